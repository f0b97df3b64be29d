package templates

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// ScheduleRepository интерфейс хранилища шаблонов и выходных
type ScheduleRepository interface {
	UpsertTemplate(ctx context.Context, tpl *domain.AvailabilityTemplate) (*domain.AvailabilityTemplate, error)
	ListTemplates(ctx context.Context, providerID int64) ([]*domain.AvailabilityTemplate, error)
	DeleteTemplate(ctx context.Context, providerID int64, day time.Weekday) error
	AddDayOff(ctx context.Context, dayOff *domain.DayOff) error
	ListDaysOff(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.DayOff, error)
	DeleteDayOff(ctx context.Context, providerID int64, date time.Time) error
}

// ProviderRepository интерфейс для проверки существования мастера
type ProviderRepository interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
