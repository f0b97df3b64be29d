package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	defaultInterval  = 5 * time.Minute
	defaultBatchSize = 50
)

// Config параметры воркера напоминаний
type Config struct {
	Interval  time.Duration
	BatchSize int
	LeadTime  time.Duration
	// Location часовой пояс мастеров, в нем хранится время записей
	Location *time.Location
}

// Worker периодически напоминает клиентам о подтвержденных записях
type Worker struct {
	repo         AppointmentRepository
	notifier     Notifier
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	interval     time.Duration
	batchSize    int
	leadTime     time.Duration
	location     *time.Location
}

// NewWorker создает воркер напоминаний
func NewWorker(
	repo AppointmentRepository,
	notifier Notifier,
	txManager TransactionManager,
	cfg Config,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = domain.DefaultReminderLeadHours * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Worker{
		repo:         repo,
		notifier:     notifier,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
		interval:     cfg.Interval,
		batchSize:    cfg.BatchSize,
		leadTime:     cfg.LeadTime,
		location:     cfg.Location,
	}
}

// Run обрабатывает пачки до отмены контекста
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("ReminderWorker: started, interval=%s, lead=%s", w.interval, w.leadTime)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ReminderWorker: stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("ReminderWorker: %v", err)
			}
		}
	}
}

// RunOnce отправляет напоминания по записям, начинающимся в ближайшие leadTime.
// Каждая запись обрабатывается в своей транзакции: сначала условно ставится флаг reminder_sent,
// затем уведомление пишется в outbox. Если флаг не встал (запись отменена или напоминание уже
// захвачено другим экземпляром), уведомление не отправляется
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	// 1. Окно по местному времени мастеров, timestamp в БД без зоны
	now := w.timeProvider.Now().In(w.location)
	from := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, time.UTC)
	to := from.Add(w.leadTime)

	due, err := w.repo.ListDueReminders(ctx, from, to, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFetchDue, err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	// 2. По одной транзакции на запись, сбой одной не блокирует остальные
	sent, skipped := 0, 0
	for _, appt := range due {
		claimed := false
		err := w.txManager.Do(ctx, func(txCtx context.Context) error {
			ok, err := w.repo.MarkReminderSent(txCtx, appt.ID)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			claimed = true
			return w.notifier.Send(txCtx, reminderNotification(appt))
		})
		if err != nil {
			w.logger.Error("ReminderWorker: appointment id=%d: %v", appt.ID, err)
			continue
		}
		if !claimed {
			w.logger.Info("ReminderWorker: appointment id=%d is no longer due, skipped", appt.ID)
			skipped++
			continue
		}
		w.metrics.IncReminderSent()
		sent++
	}

	w.logger.Info("ReminderWorker: sent %d of %d reminders, skipped %d", sent, len(due), skipped)
	if failed := len(due) - sent - skipped; failed > 0 {
		return sent, fmt.Errorf("%w: %d of %d failed", ErrSend, failed, len(due))
	}
	return sent, nil
}

func reminderNotification(appt *domain.Appointment) domain.Notification {
	return domain.Notification{
		RecipientID:   appt.ClientID,
		RecipientRole: domain.RoleClient,
		Kind:          domain.NotificationReminder,
		AppointmentID: appt.ID,
		Message: fmt.Sprintf("Напоминаем о записи: %s, %s %s-%s.",
			appt.ServiceName, appt.AppointmentDate.Format(domain.DateFormat), appt.StartTime, appt.EndTime),
		Actions: []domain.NotificationAction{
			{Label: "Отменить запись", Token: domain.ActionToken(domain.ActionCancel, appt.ID)},
		},
	}
}
