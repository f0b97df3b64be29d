package get_templates

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
)

type TemplateService interface {
	GetTemplates(ctx context.Context, providerID int64) (*models.TemplateListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
