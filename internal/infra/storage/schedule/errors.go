package schedule

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrTemplateNotFound возвращается, когда шаблон на день недели не найден
	ErrTemplateNotFound = fmt.Errorf("schedule.repository: template not found: %w", domain.ErrNotFound)

	// ErrDayOffNotFound возвращается, когда выходной не найден
	ErrDayOffNotFound = fmt.Errorf("schedule.repository: day off not found: %w", domain.ErrNotFound)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("schedule.repository: failed to build query: %w", domain.ErrPersistence)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("schedule.repository: failed to execute query: %w", domain.ErrPersistence)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("schedule.repository: failed to scan row: %w", domain.ErrPersistence)
)
