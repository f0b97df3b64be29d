package reminders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// AppointmentRepository интерфейс выборки записей для напоминаний
type AppointmentRepository interface {
	ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64) (bool, error)
}

// Notifier интерфейс отправки уведомлений (outbox в той же транзакции)
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик напоминаний
type Metrics interface {
	IncReminderSent()
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
