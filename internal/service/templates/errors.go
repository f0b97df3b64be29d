package templates

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = fmt.Errorf("templates: provider not found: %w", domain.ErrNotFound)

	// ErrTemplateNotFound возвращается, когда на день недели нет шаблона
	ErrTemplateNotFound = fmt.Errorf("templates: template not found: %w", domain.ErrNotFound)

	// ErrDayOffNotFound возвращается, когда дата не отмечена выходным
	ErrDayOffNotFound = fmt.Errorf("templates: day off not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пользователь меняет чужое расписание
	ErrAccessDenied = errors.New("templates: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("templates: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("templates: internal error: %w", domain.ErrPersistence)
)
