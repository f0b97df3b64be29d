package delete_day_off

import (
	"context"
	"time"
)

type TemplateService interface {
	RemoveDayOff(ctx context.Context, providerID, userID int64, date time.Time) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
