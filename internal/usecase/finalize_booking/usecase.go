package finalize_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

// UseCase use case финализации черновика в запись.
// Перепроверка слота, вставка и уведомление мастера выполняются в одной сериализуемой транзакции
type UseCase struct {
	slots           SlotsQuery
	appointmentRepo AppointmentRepository
	clientRepo      ClientRepository
	notifier        Notifier
	txManager       TransactionManager
	metrics         Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slots SlotsQuery,
	appointmentRepo AppointmentRepository,
	clientRepo ClientRepository,
	notifier Notifier,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slots:           slots,
		appointmentRepo: appointmentRepo,
		clientRepo:      clientRepo,
		notifier:        notifier,
		txManager:       txManager,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute создает запись в статусе pending, если выбранный интервал еще свободен.
// Из N одновременных вызовов на один интервал успешен ровно один, остальные получают ErrSlotNotAvailable
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FinalizeBooking: client=%d, provider=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("FinalizeBooking: validation failed: %v", err)
		uc.metrics.IncBookingFinalization(resultRejected)
		return nil, err
	}

	// 2. Клиент
	client, err := uc.clientRepo.GetClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("FinalizeBooking: client id=%d not found", req.ClientID)
			uc.metrics.IncBookingFinalization(resultRejected)
			return nil, ErrClientNotFound
		}
		uc.logger.Error("FinalizeBooking: failed to get client id=%d: %v", req.ClientID, err)
		uc.metrics.IncBookingFinalization(resultError)
		return nil, fmt.Errorf("%w: failed to get client: %w", ErrInternal, err)
	}

	var result *domain.Appointment

	// 3. Перепроверка, вставка и уведомление в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Слот все еще предлагается движком доступности
		available, err := uc.slots.Execute(txCtx, &get_available_slots.Request{
			ProviderID: req.ProviderID,
			ServiceID:  req.ServiceID,
			Date:       req.Date,
		})
		if err != nil {
			return uc.mapQueryError(err)
		}

		if !containsStart(available, req) {
			uc.logger.Warn("FinalizeBooking: slot %s %s is no longer offered for provider=%d",
				req.Date.Format(domain.DateFormat), req.StartTime, req.ProviderID)
			return ErrSlotNotAvailable
		}

		// 3.2. Конец интервала = начало + длительность услуги
		endTime, err := req.StartTime.AddMinutes(available.DurationMinutes)
		if err != nil {
			return fmt.Errorf("%w: end time: %v", ErrInvalidInput, err)
		}

		appt := &domain.Appointment{
			ProviderID:      req.ProviderID,
			ClientID:        req.ClientID,
			ServiceID:       req.ServiceID,
			AppointmentDate: domain.TruncateDate(req.Date),
			StartTime:       req.StartTime,
			EndTime:         endTime,
			Status:          domain.StatusPending,
			ServiceName:     available.Service.Name,
			ServicePrice:    available.Service.Price,
			Comment:         trimComment(req.Comment),
		}

		// 3.3. Условная вставка. Пересечение ловит exclusion constraint
		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				uc.logger.Warn("FinalizeBooking: slot taken concurrently: %v", err)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("FinalizeBooking: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		// 3.4. Уведомление мастеру с кнопками подтверждения
		if err := uc.notifier.Send(txCtx, providerNotification(created, client)); err != nil {
			uc.logger.Error("FinalizeBooking: failed to enqueue notification: %v", err)
			return fmt.Errorf("%w: failed to enqueue notification: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		uc.metrics.IncBookingFinalization(resultOf(err))
		if !isClassified(err) {
			// begin/commit или исчерпаны повторы сериализации
			uc.logger.Error("FinalizeBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
		}
		return nil, err
	}

	uc.metrics.IncBookingFinalization(resultCreated)
	uc.logger.Info("FinalizeBooking: appointment id=%d created for client=%d, provider=%d, %s %s-%s",
		result.ID, result.ClientID, result.ProviderID,
		result.AppointmentDate.Format(domain.DateFormat), result.StartTime, result.EndTime)

	return &Response{Appointment: result}, nil
}

// mapQueryError переводит ошибки движка доступности в ошибки финализации
func (uc *UseCase) mapQueryError(err error) error {
	switch {
	case errors.Is(err, get_available_slots.ErrProviderNotFound):
		return ErrProviderNotFound
	case errors.Is(err, get_available_slots.ErrServiceNotFound):
		return ErrServiceNotFound
	case errors.Is(err, get_available_slots.ErrDateInPast):
		return ErrSlotNotAvailable
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		uc.logger.Error("FinalizeBooking: availability re-check failed: %v", err)
		return fmt.Errorf("%w: availability re-check failed: %w", ErrInternal, err)
	}
}

func containsStart(resp *get_available_slots.Response, req *Request) bool {
	for _, slot := range resp.Slots {
		if slot.StartTime.Equal(req.StartTime) && domain.SameDate(slot.Date, req.Date) {
			return true
		}
	}
	return false
}

func trimComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	return ptr.Ptr(strings.TrimSpace(*comment))
}

func isClassified(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrPersistence)
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return resultConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return resultRejected
	default:
		return resultError
	}
}

func providerNotification(appt *domain.Appointment, client *domain.Client) domain.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Новая запись: %s, %s %s-%s.\nКлиент: %s",
		appt.ServiceName, appt.AppointmentDate.Format(domain.DateFormat), appt.StartTime, appt.EndTime, client.DisplayName)
	if client.Contact != nil {
		fmt.Fprintf(&b, ", %s", *client.Contact)
	}
	if appt.Comment != nil {
		fmt.Fprintf(&b, "\nКомментарий: %s", *appt.Comment)
	}

	return domain.Notification{
		RecipientID:   appt.ProviderID,
		RecipientRole: domain.RoleProvider,
		Kind:          domain.NotificationBookingRequested,
		AppointmentID: appt.ID,
		Message:       b.String(),
		Actions: []domain.NotificationAction{
			{Label: "Подтвердить", Token: domain.ActionToken(domain.ActionAccept, appt.ID)},
			{Label: "Отклонить", Token: domain.ActionToken(domain.ActionReject, appt.ID)},
		},
	}
}
