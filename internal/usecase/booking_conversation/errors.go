package booking_conversation

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных данных клиента или запроса
	ErrInvalidInput = fmt.Errorf("booking_conversation: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("booking_conversation: internal error: %w", domain.ErrPersistence)

	// errFeedbackLoop шаги диалога зациклились на обратной связи
	errFeedbackLoop = fmt.Errorf("booking_conversation: too many feedback rounds: %w", domain.ErrPersistence)
)
