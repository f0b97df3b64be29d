package finalize_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// validateRequest валидирует черновик перед открытием транзакции
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}
	if req.Comment != nil {
		n := utf8.RuneCountInString(strings.TrimSpace(*req.Comment))
		if n == 0 || n > domain.MaxCommentLength {
			return fmt.Errorf("%w: comment must be 1..%d characters", ErrInvalidInput, domain.MaxCommentLength)
		}
	}
	return nil
}
