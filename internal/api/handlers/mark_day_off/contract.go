package mark_day_off

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
)

type TemplateService interface {
	MarkDayOff(ctx context.Context, req *models.DayOffRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
