package finalize_booking

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

// SlotsQuery движок доступности. Вызывается внутри транзакции для перепроверки слота
type SlotsQuery interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// AppointmentRepository интерфейс реестра записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// ClientRepository интерфейс для получения клиента
type ClientRepository interface {
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
}

// Notifier интерфейс отправки уведомлений (outbox в той же транзакции)
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик результатов финализации
type Metrics interface {
	IncBookingFinalization(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
