package get_provider_appointments

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments/models"
)

type AppointmentService interface {
	ListForProvider(ctx context.Context, req *models.ProviderAppointmentsRequest, requesterID int64) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
