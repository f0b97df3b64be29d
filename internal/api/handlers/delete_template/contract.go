package delete_template

import "context"

type TemplateService interface {
	RemoveTemplate(ctx context.Context, providerID, userID int64, day int) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
