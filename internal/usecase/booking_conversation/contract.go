package booking_conversation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/finalize_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_dates"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/workflow"
)

// SessionStore хранилище черновиков
type SessionStore interface {
	Load(ctx context.Context, clientID int64) (workflow.Session, error)
	Save(ctx context.Context, sess workflow.Session) error
	Delete(ctx context.Context, clientID int64) error
}

// CatalogRepository интерфейс справочника мастеров, услуг и клиентов
type CatalogRepository interface {
	UpsertClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	ListActiveProviders(ctx context.Context) ([]*domain.Provider, error)
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	ListActiveServices(ctx context.Context, providerID int64) ([]*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
}

// DatesQuery даты со свободными слотами
type DatesQuery interface {
	Execute(ctx context.Context, req *get_available_dates.Request) (*get_available_dates.Response, error)
}

// SlotsQuery свободные слоты на дату
type SlotsQuery interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// Finalizer создание записи из черновика
type Finalizer interface {
	Execute(ctx context.Context, req *finalize_booking.Request) (*finalize_booking.Response, error)
}

// Metrics счетчик событий диалога
type Metrics interface {
	IncConversationEvent(kind string)
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
