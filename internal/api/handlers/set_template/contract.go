package set_template

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
)

type TemplateService interface {
	SetTemplate(ctx context.Context, req *models.SetTemplateRequest) (*models.TemplateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
