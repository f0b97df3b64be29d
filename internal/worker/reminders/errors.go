package reminders

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	ErrFetchDue = fmt.Errorf("reminders: fetch due appointments: %w", domain.ErrPersistence)
	ErrSend     = fmt.Errorf("reminders: send reminder: %w", domain.ErrPersistence)
)
