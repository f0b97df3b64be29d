package notifier

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-BookingEngine/internal/infra/storage/outbox"
)

// OutboxRepository интерфейс очереди неотправленных уведомлений
type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]*outbox.Message, error)
	MarkDelivered(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, ids []int64, cause string) error
}

// MessageWriter интерфейс продюсера Kafka (*kafka.Writer)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик отправленных уведомлений
type Metrics interface {
	IncNotificationRelayed(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
