package appointment

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("appointment.repository: appointment not found: %w", domain.ErrNotFound)

	// ErrSlotTaken возвращается, когда интервал пересекается с активной записью (exclusion constraint)
	ErrSlotTaken = fmt.Errorf("appointment.repository: slot already taken: %w", domain.ErrConflict)

	// ErrStatusChanged возвращается, когда условное обновление не нашло запись в ожидаемом статусе
	ErrStatusChanged = fmt.Errorf("appointment.repository: status changed concurrently: %w", domain.ErrInvalidTransition)

	// ErrReviewNotAllowed возвращается, когда отзыв уже оставлен или запись не завершена
	ErrReviewNotAllowed = fmt.Errorf("appointment.repository: review not allowed: %w", domain.ErrInvalidTransition)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("appointment.repository: failed to build query: %w", domain.ErrPersistence)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("appointment.repository: failed to execute query: %w", domain.ErrPersistence)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("appointment.repository: failed to scan row: %w", domain.ErrPersistence)
)
