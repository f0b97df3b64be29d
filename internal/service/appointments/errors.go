package appointments

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("appointments: appointment not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда действующее лицо не является стороной записи
	ErrAccessDenied = errors.New("appointments: access denied")

	// ErrInvalidTransition возвращается, когда действие недопустимо в текущем статусе
	ErrInvalidTransition = fmt.Errorf("appointments: action is not allowed in current status: %w", domain.ErrInvalidTransition)

	// ErrAlreadyReviewed возвращается при повторном отзыве
	ErrAlreadyReviewed = fmt.Errorf("appointments: review already left: %w", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("appointments: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("appointments: internal error: %w", domain.ErrPersistence)
)
