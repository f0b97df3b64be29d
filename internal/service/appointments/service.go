package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments/models"
)

// Результаты переходов для метрик
const (
	resultOK                = "ok"
	resultDenied            = "denied"
	resultNotFound          = "not_found"
	resultInvalidTransition = "invalid_transition"
	resultError             = "error"
)

// actionReview метка метрик для отзывов, отзыв не меняет статус
const actionReview = "review"

// Service сервис жизненного цикла записей: подтверждение, отклонение, отмена, завершение и отзывы
type Service struct {
	appointmentRepo AppointmentRepository
	notifier        Notifier
	txManager       TransactionManager
	metrics         Metrics
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	notifier Notifier,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		txManager:       txManager,
		metrics:         metrics,
		logger:          logger,
	}
}

// Accept подтверждает запись. Доступно только мастеру записи
func (s *Service) Accept(ctx context.Context, id int64, providerID int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, id, domain.Actor{Role: domain.RoleProvider, ID: providerID}, domain.ActionAccept, nil)
}

// Reject отклоняет запись. Доступно только мастеру записи, клиент получает причину
func (s *Service) Reject(ctx context.Context, id int64, providerID int64, reason *string) (*models.AppointmentResponse, error) {
	return s.transition(ctx, id, domain.Actor{Role: domain.RoleProvider, ID: providerID}, domain.ActionReject, reason)
}

// Cancel отменяет запись по инициативе мастера или клиента. Уведомляется другая сторона
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor, reason *string) (*models.AppointmentResponse, error) {
	return s.transition(ctx, id, actor, domain.ActionCancel, reason)
}

// Complete отмечает визит состоявшимся. Клиент получает кнопки оценки
func (s *Service) Complete(ctx context.Context, id int64, providerID int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, id, domain.Actor{Role: domain.RoleProvider, ID: providerID}, domain.ActionComplete, nil)
}

// transition применяет действие к записи в одной транзакции:
// блокировка строки, проверка стороны, условное обновление статуса и уведомление
func (s *Service) transition(
	ctx context.Context,
	id int64,
	actor domain.Actor,
	action domain.AppointmentAction,
	reason *string,
) (*models.AppointmentResponse, error) {
	s.logger.Info("Transition: %s appointment id=%d by %s=%d", action, id, actor.Role, actor.ID)

	// 1. Валидация
	if id <= 0 || actor.ID <= 0 {
		s.metrics.IncAppointmentTransition(string(action), resultError)
		return nil, fmt.Errorf("%w: ids must be positive", ErrInvalidInput)
	}
	reason, err := normalizeText(reason, domain.MaxCancellationReasonLen)
	if err != nil {
		s.logger.Warn("Transition: invalid reason for appointment id=%d: %v", id, err)
		s.metrics.IncAppointmentTransition(string(action), resultError)
		return nil, err
	}

	var updated *domain.Appointment

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2. Получаем запись с блокировкой строки
		appt, err := s.getForUpdate(txCtx, "Transition", id)
		if err != nil {
			return err
		}

		// 3. Действующее лицо - сторона записи
		if !appt.BelongsTo(actor) {
			s.logger.Warn("Transition: %s=%d is not a party of appointment id=%d", actor.Role, actor.ID, id)
			return ErrAccessDenied
		}

		// 4. Переход по таблице статусов
		next, err := appt.Status.Next(action)
		if err != nil {
			s.logger.Warn("Transition: %v (appointment id=%d)", err, id)
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		upd := appointmentRepo.StatusUpdate{ID: id, From: appt.Status, To: next}
		if next == domain.StatusCancelled {
			role := actor.Role
			upd.CancellationReason = reason
			upd.CancelledBy = &role
		}

		// 5. Условное обновление: статус не изменился с момента чтения
		if err := s.appointmentRepo.UpdateStatus(txCtx, upd); err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusChanged) {
				s.logger.Warn("Transition: appointment id=%d changed concurrently", id)
				return ErrInvalidTransition
			}
			s.logger.Error("Transition: repository error for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: Transition - update status: %v", ErrInternal, err)
		}

		appt.Status = next
		appt.CancellationReason = upd.CancellationReason
		appt.CancelledBy = upd.CancelledBy

		// 6. Уведомление другой стороне
		if err := s.notifier.Send(txCtx, transitionNotification(appt, action, actor)); err != nil {
			s.logger.Error("Transition: failed to enqueue notification for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: Transition - enqueue notification: %v", ErrInternal, err)
		}

		updated = appt
		return nil
	})

	if err != nil {
		s.metrics.IncAppointmentTransition(string(action), resultOf(err))
		return nil, s.wrapTxError("Transition", err)
	}

	s.metrics.IncAppointmentTransition(string(action), resultOK)
	s.logger.Info("Transition: appointment id=%d is now %s", id, updated.Status)
	return models.FromDomainAppointment(updated), nil
}

// LeaveReview сохраняет оценку и отзыв клиента. Только для завершенной записи и только один раз
func (s *Service) LeaveReview(ctx context.Context, id int64, clientID int64, rating int, text *string) (*models.AppointmentResponse, error) {
	s.logger.Info("LeaveReview: appointment id=%d, client=%d, rating=%d", id, clientID, rating)

	// 1. Валидация
	if id <= 0 || clientID <= 0 {
		return nil, fmt.Errorf("%w: ids must be positive", ErrInvalidInput)
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		s.logger.Warn("LeaveReview: invalid rating=%d", rating)
		return nil, fmt.Errorf("%w: rating must be %d..%d", ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}
	text, err := normalizeText(text, domain.MaxReviewLength)
	if err != nil {
		s.logger.Warn("LeaveReview: invalid review text: %v", err)
		return nil, err
	}

	var reviewed *domain.Appointment

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := s.getForUpdate(txCtx, "LeaveReview", id)
		if err != nil {
			return err
		}

		if !appt.BelongsTo(domain.Actor{Role: domain.RoleClient, ID: clientID}) {
			s.logger.Warn("LeaveReview: client=%d is not a party of appointment id=%d", clientID, id)
			return ErrAccessDenied
		}
		if appt.Status != domain.StatusCompleted {
			s.logger.Warn("LeaveReview: appointment id=%d is %s, not completed", id, appt.Status)
			return ErrInvalidTransition
		}
		if appt.Rating != nil {
			s.logger.Warn("LeaveReview: appointment id=%d already reviewed", id)
			return ErrAlreadyReviewed
		}

		if err := s.appointmentRepo.SetReview(txCtx, id, rating, text); err != nil {
			if errors.Is(err, appointmentRepo.ErrReviewNotAllowed) {
				return ErrAlreadyReviewed
			}
			s.logger.Error("LeaveReview: repository error for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: LeaveReview - set review: %v", ErrInternal, err)
		}

		appt.Rating = &rating
		appt.Review = text
		reviewed = appt
		return nil
	})

	if err != nil {
		s.metrics.IncAppointmentTransition(actionReview, resultOf(err))
		return nil, s.wrapTxError("LeaveReview", err)
	}

	s.metrics.IncAppointmentTransition(actionReview, resultOK)
	s.logger.Info("LeaveReview: appointment id=%d rated %d", id, rating)
	return models.FromDomainAppointment(reviewed), nil
}

// ApplyToken выполняет действие по токену кнопки из уведомления.
// Мастер может подтвердить, отклонить, завершить или отменить запись, клиент - отменить или оценить
func (s *Service) ApplyToken(ctx context.Context, token string, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("ApplyToken: %s=%d, token=%q", actor.Role, actor.ID, token)

	cmd, err := domain.ParseToken(token)
	if err != nil {
		s.logger.Warn("ApplyToken: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch c := cmd.(type) {
	case domain.ReviewCommand:
		if actor.Role != domain.RoleClient {
			return nil, ErrAccessDenied
		}
		return s.LeaveReview(ctx, c.AppointmentID, actor.ID, c.Rating, nil)

	case domain.ActionCommand:
		if c.Action == domain.ActionCancel {
			return s.Cancel(ctx, c.AppointmentID, actor, nil)
		}
		// остальные действия только у мастера
		if actor.Role != domain.RoleProvider {
			s.logger.Warn("ApplyToken: %s=%d cannot %s", actor.Role, actor.ID, c.Action)
			return nil, ErrAccessDenied
		}
		switch c.Action {
		case domain.ActionAccept:
			return s.Accept(ctx, c.AppointmentID, actor.ID)
		case domain.ActionReject:
			return s.Reject(ctx, c.AppointmentID, actor.ID, nil)
		case domain.ActionComplete:
			return s.Complete(ctx, c.AppointmentID, actor.ID)
		}
	}

	return nil, fmt.Errorf("%w: unsupported token %q", ErrInvalidInput, token)
}

// GetByID получает запись по ID. Видна только сторонам записи
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for %s=%d", id, actor.Role, actor.ID)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !appt.BelongsTo(actor) {
		s.logger.Warn("GetByID: access denied for %s=%d to appointment id=%d", actor.Role, actor.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appt), nil
}

// ListForProvider возвращает записи мастера по фильтру. Доступно только самому мастеру
func (s *Service) ListForProvider(ctx context.Context, req *models.ProviderAppointmentsRequest, requesterID int64) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListForProvider: provider=%d, requester=%d", req.ProviderID, requesterID)

	if req.ProviderID != requesterID {
		s.logger.Warn("ListForProvider: user=%d is not provider=%d", requesterID, req.ProviderID)
		return nil, ErrAccessDenied
	}
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListForProvider: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListForProvider: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: ListForProvider - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListForProvider: found %d appointments for provider=%d", len(list), req.ProviderID)
	return models.FromDomainAppointmentList(list), nil
}

// ListForClient возвращает записи клиента. activeOnly оставляет только pending и confirmed
func (s *Service) ListForClient(ctx context.Context, clientID int64, activeOnly bool) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListForClient: client=%d, activeOnly=%t", clientID, activeOnly)

	list, err := s.appointmentRepo.List(ctx, domain.AppointmentsFilter{
		ClientID:        &clientID,
		IncludeInactive: !activeOnly,
	})
	if err != nil {
		s.logger.Error("ListForClient: repository error for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: ListForClient - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(list), nil
}

// Вспомогательные методы

func (s *Service) getForUpdate(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - get appointment: %v", ErrInternal, op, err)
	}
	return appt, nil
}

// wrapTxError оставляет ошибки сервиса как есть, ошибки begin/commit оборачивает в ErrInternal
func (s *Service) wrapTxError(op string, err error) error {
	if errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrPersistence) {
		return err
	}
	s.logger.Error("%s: transaction failed: %v", op, err)
	return fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return resultDenied
	case errors.Is(err, domain.ErrNotFound):
		return resultNotFound
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return resultInvalidTransition
	default:
		return resultError
	}
}

// normalizeText обрезает пробелы, пустую строку считает отсутствием текста
func normalizeText(text *string, maxLen int) (*string, error) {
	if text == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*text)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return nil, fmt.Errorf("%w: text must be at most %d characters", ErrInvalidInput, maxLen)
	}
	return &trimmed, nil
}
