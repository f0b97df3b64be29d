package catalog

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// CatalogRepository интерфейс справочника мастеров и услуг
type CatalogRepository interface {
	CreateProvider(ctx context.Context, p *domain.Provider) (*domain.Provider, error)
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	ListActiveProviders(ctx context.Context) ([]*domain.Provider, error)
	SetProviderActive(ctx context.Context, id int64, active bool) error
	CreateService(ctx context.Context, s *domain.Service) (*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListActiveServices(ctx context.Context, providerID int64) ([]*domain.Service, error)
	SetServiceActive(ctx context.Context, id int64, active bool) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
