package appointment_action

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments/models"
)

type AppointmentService interface {
	Accept(ctx context.Context, id int64, providerID int64) (*models.AppointmentResponse, error)
	Reject(ctx context.Context, id int64, providerID int64, reason *string) (*models.AppointmentResponse, error)
	Cancel(ctx context.Context, id int64, actor domain.Actor, reason *string) (*models.AppointmentResponse, error)
	Complete(ctx context.Context, id int64, providerID int64) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
