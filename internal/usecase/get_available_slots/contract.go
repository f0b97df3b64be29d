package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// CatalogRepository интерфейс справочника мастеров и услуг
type CatalogRepository interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
}

// ScheduleRepository интерфейс хранилища шаблонов и выходных
type ScheduleRepository interface {
	ListTemplates(ctx context.Context, providerID int64) ([]*domain.AvailabilityTemplate, error)
	ListDaysOff(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.DayOff, error)
}

// AppointmentRepository интерфейс реестра записей
type AppointmentRepository interface {
	ListOccupyingByProviderAndDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
