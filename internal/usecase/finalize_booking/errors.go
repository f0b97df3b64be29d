package finalize_booking

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrSlotNotAvailable возвращается, когда выбранный интервал уже занят или больше не предлагается
	ErrSlotNotAvailable = fmt.Errorf("finalize_booking: slot is not available: %w", domain.ErrConflict)

	// ErrProviderNotFound возвращается, когда мастер не найден или неактивен
	ErrProviderNotFound = fmt.Errorf("finalize_booking: provider not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = fmt.Errorf("finalize_booking: service not found: %w", domain.ErrNotFound)

	// ErrClientNotFound возвращается, когда клиент не зарегистрирован
	ErrClientNotFound = fmt.Errorf("finalize_booking: client not found: %w", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных данных черновика
	ErrInvalidInput = fmt.Errorf("finalize_booking: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("finalize_booking: internal error: %w", domain.ErrPersistence)
)
