package list_providers

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/catalog/models"
)

type CatalogService interface {
	ListProviders(ctx context.Context) (*models.ProviderListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
