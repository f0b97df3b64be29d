package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerEventID   = "event_id"
	headerEventType = "event_type"

	defaultPollInterval = time.Second
	defaultBatchSize    = 100

	resultDelivered = "delivered"
	resultFailed    = "failed"
)

// Config параметры relay
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay переносит уведомления из outbox в Kafka.
// Строки выбираются с блокировкой SKIP LOCKED, поэтому несколько экземпляров не отправляют одно сообщение дважды.
// Доставка at-least-once: потребитель дедуплицирует по заголовку event_id
type Relay struct {
	outbox       OutboxRepository
	writer       MessageWriter
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
	tracer       trace.Tracer
	pollInterval time.Duration
	batchSize    int
}

// NewRelay создает relay уведомлений
func NewRelay(
	outbox OutboxRepository,
	writer MessageWriter,
	txManager TransactionManager,
	cfg Config,
	metrics Metrics,
	logger Logger,
) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Relay{
		outbox:       outbox,
		writer:       writer,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
		tracer:       otel.Tracer("booking.internal.integrations.notifier"),
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
	}
}

// NewKafkaWriter создает продюсера для топика уведомлений. Ключ сообщения - получатель,
// поэтому сообщения одного получателя попадают в одну партицию по порядку
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// Run отправляет пачки до отмены контекста
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("NotificationRelay: started, interval=%s, batch=%d", r.pollInterval, r.batchSize)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("NotificationRelay: stopped")
			return
		case <-ticker.C:
			// пачка за пачкой, пока очередь не опустеет
			for {
				n, err := r.RelayBatch(ctx)
				if err != nil {
					r.logger.Error("NotificationRelay: %v", err)
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayBatch отправляет одну пачку и возвращает количество доставленных сообщений.
// При ошибке брокера сообщения остаются в очереди со счетчиком попыток и текстом ошибки
func (r *Relay) RelayBatch(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "notifier.relay_batch")
	defer span.End()

	var (
		delivered  int
		publishErr error
	)

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем пачку неотправленных строк
		pending, err := r.outbox.FetchPending(txCtx, r.batchSize)
		if err != nil {
			return fmt.Errorf("%w: fetch pending: %v", ErrOutbox, err)
		}
		if len(pending) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(pending))
		ids := make([]int64, 0, len(pending))
		for _, m := range pending {
			msgs = append(msgs, kafka.Message{
				Key:   []byte(strconv.FormatInt(m.RecipientID, 10)),
				Value: m.Payload,
				Headers: []kafka.Header{
					{Key: headerEventID, Value: []byte(m.EventID.String())},
					{Key: headerEventType, Value: []byte(m.Kind)},
				},
			})
			ids = append(ids, m.ID)
		}

		// 2. Публикуем пачку
		if err := r.writer.WriteMessages(txCtx, msgs...); err != nil {
			publishErr = err
			// фиксируем попытку, строки остаются в очереди
			if markErr := r.outbox.MarkFailed(txCtx, ids, err.Error()); markErr != nil {
				return fmt.Errorf("%w: mark failed: %v", ErrOutbox, markErr)
			}
			r.metrics.IncNotificationRelayed(resultFailed)
			return nil
		}

		// 3. Отмечаем доставленными
		if err := r.outbox.MarkDelivered(txCtx, ids); err != nil {
			return fmt.Errorf("%w: mark delivered: %v", ErrOutbox, err)
		}
		delivered = len(ids)
		return nil
	})

	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if publishErr != nil {
		span.RecordError(publishErr)
		return 0, fmt.Errorf("%w: %v", ErrPublish, publishErr)
	}

	for i := 0; i < delivered; i++ {
		r.metrics.IncNotificationRelayed(resultDelivered)
	}
	if delivered > 0 {
		span.SetAttributes(attribute.Int("delivered", delivered))
		r.logger.Info("NotificationRelay: delivered %d messages", delivered)
	}
	return delivered, nil
}
