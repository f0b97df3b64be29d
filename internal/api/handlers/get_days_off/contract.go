package get_days_off

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
)

type TemplateService interface {
	GetDaysOff(ctx context.Context, providerID int64, from, to time.Time) (*models.DayOffListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
