package finalize_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request собранный черновик записи
type Request struct {
	ClientID   int64
	ProviderID int64
	ServiceID  int64
	Date       time.Time
	StartTime  types.TimeString
	Comment    *string
}

// Response созданная запись в статусе pending
type Response struct {
	Appointment *domain.Appointment
}

// Результаты финализации для метрик
const (
	resultCreated  = "created"
	resultConflict = "conflict"
	resultRejected = "rejected"
	resultError    = "error"
)
