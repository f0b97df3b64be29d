package booking_conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/finalize_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/workflow"
)

// maxFeedbackRounds ограничение на цепочку событий обратной связи за один ход
const maxFeedbackRounds = 8

// UseCase драйвер диалога записи: хранит сессию, прогоняет автомат workflow
// и исполняет его эффекты
type UseCase struct {
	sessions     SessionStore
	catalogRepo  CatalogRepository
	dates        DatesQuery
	slots        SlotsQuery
	finalizer    Finalizer
	draftTTL     time.Duration
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// draftTTL - время жизни черновика без действий клиента
func NewUseCase(
	sessions SessionStore,
	catalogRepo CatalogRepository,
	dates DatesQuery,
	slots SlotsQuery,
	finalizer Finalizer,
	draftTTL time.Duration,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if draftTTL <= 0 {
		draftTTL = domain.DefaultDraftTTLMinutes * time.Minute
	}
	return &UseCase{
		sessions:     sessions,
		catalogRepo:  catalogRepo,
		dates:        dates,
		slots:        slots,
		finalizer:    finalizer,
		draftTTL:     draftTTL,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Start регистрирует клиента и начинает новый черновик. Предыдущий черновик отбрасывается
func (uc *UseCase) Start(ctx context.Context, req *StartRequest) (*Prompt, error) {
	uc.logger.Info("BookingConversation.Start: client=%d", req.ClientID)

	// 1. Валидация данных клиента
	client, err := newClient(req)
	if err != nil {
		uc.logger.Warn("BookingConversation.Start: validation failed: %v", err)
		return nil, err
	}

	// 2. Клиент в справочнике
	if _, err := uc.catalogRepo.UpsertClient(ctx, client); err != nil {
		uc.logger.Error("BookingConversation.Start: failed to upsert client id=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: failed to upsert client: %w", ErrInternal, err)
	}

	// 3. Новая сессия и первый вопрос
	sess := workflow.NewSession(req.ClientID, uc.timeProvider.Now(), uc.draftTTL)
	prompt, err := uc.promptFor(ctx, sess.State)
	if err != nil {
		uc.logger.Error("BookingConversation.Start: failed to render prompt: %v", err)
		return nil, err
	}

	if err := uc.sessions.Save(ctx, sess); err != nil {
		uc.logger.Error("BookingConversation.Start: failed to save session for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: failed to save session: %w", ErrInternal, err)
	}

	uc.metrics.IncConversationEvent("start")
	return prompt, nil
}

// Handle обрабатывает ход клиента. Нет сессии или она истекла - начинается новая, ввод игнорируется
func (uc *UseCase) Handle(ctx context.Context, in *Input) (*Prompt, error) {
	if in.ClientID <= 0 {
		return nil, fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}
	now := uc.timeProvider.Now()

	// 1. Загружаем черновик
	sess, err := uc.sessions.Load(ctx, in.ClientID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.logger.Error("BookingConversation.Handle: failed to load session for client=%d: %v", in.ClientID, err)
		return nil, fmt.Errorf("%w: failed to load session: %w", ErrInternal, err)
	}
	if err != nil || sess.Expired(now) || sess.State.IsTerminal() {
		uc.logger.Info("BookingConversation.Handle: no active draft for client=%d, restarting", in.ClientID)
		return uc.restart(ctx, in.ClientID, now)
	}

	// 2. Декодируем ввод
	ev := decodeInput(in)
	uc.metrics.IncConversationEvent(ev.Kind.String())
	uc.logger.Info("BookingConversation.Handle: client=%d, step=%s, event=%s", in.ClientID, sess.State.Step, ev.Kind)

	// 3. Прогоняем автомат и исполняем эффекты
	state, prompt, err := uc.drive(ctx, in.ClientID, sess.State, ev)
	if err != nil {
		uc.logger.Error("BookingConversation.Handle: client=%d aborted: %v", in.ClientID, err)
		if delErr := uc.sessions.Delete(ctx, in.ClientID); delErr != nil {
			uc.logger.Error("BookingConversation.Handle: failed to delete session for client=%d: %v", in.ClientID, delErr)
		}
		return failurePrompt(), nil
	}

	// 4. Сохраняем или удаляем черновик
	if state.IsTerminal() {
		err = uc.sessions.Delete(ctx, in.ClientID)
	} else {
		err = uc.sessions.Save(ctx, sess.Advance(state, now, uc.draftTTL))
	}
	if err != nil {
		uc.logger.Error("BookingConversation.Handle: failed to persist session for client=%d: %v", in.ClientID, err)
		return nil, fmt.Errorf("%w: failed to persist session: %w", ErrInternal, err)
	}

	return prompt, nil
}

// drive применяет событие и исполняет эффекты, пока автомат не перестанет получать обратную связь
func (uc *UseCase) drive(ctx context.Context, clientID int64, state workflow.State, ev workflow.Event) (workflow.State, *Prompt, error) {
	queue := []workflow.Event{ev}
	var (
		notices []string
		prompt  *Prompt
	)

	for round := 0; len(queue) > 0; round++ {
		if round >= maxFeedbackRounds {
			return state, nil, errFeedbackLoop
		}
		ev, queue = queue[0], queue[1:]

		next, effects := workflow.Transition(state, ev)
		state = next

	apply:
		for _, eff := range effects {
			switch eff.Kind {
			case workflow.EffectNotice:
				notices = append(notices, noticeText(eff))

			case workflow.EffectPrompt, workflow.EffectAwaitComment:
				p, feedback, err := uc.render(ctx, state, eff.Step)
				if err != nil {
					return state, nil, err
				}
				if feedback != nil {
					queue = append(queue, *feedback)
					prompt = nil
					break apply
				}
				prompt = p

			case workflow.EffectFinalize:
				feedback, err := uc.finalize(ctx, clientID, state.Draft)
				if err != nil {
					return state, nil, err
				}
				queue = append(queue, feedback)

			case workflow.EffectEnd:
				prompt = endPrompt(eff)
			}
		}
	}

	if prompt == nil {
		// терминальные состояния и игнорируемые события без эффектов
		p, err := uc.promptFor(ctx, state)
		if err != nil {
			return state, nil, err
		}
		prompt = p
	}

	return state, withNotices(prompt, notices), nil
}

// finalize вызывает финализацию и переводит результат в событие обратной связи
func (uc *UseCase) finalize(ctx context.Context, clientID int64, d workflow.Draft) (workflow.Event, error) {
	req := &finalize_booking.Request{
		ClientID:   clientID,
		ProviderID: d.ProviderID,
		ServiceID:  d.ServiceID,
		Date:       d.Date,
		StartTime:  d.Time,
	}
	if d.Comment != "" {
		comment := d.Comment
		req.Comment = &comment
	}

	resp, err := uc.finalizer.Execute(ctx, req)
	switch {
	case err == nil:
		uc.logger.Info("BookingConversation: appointment id=%d created for client=%d", resp.Appointment.ID, clientID)
		return workflow.Finalized(resp.Appointment.ID), nil
	case errors.Is(err, domain.ErrConflict):
		uc.logger.Warn("BookingConversation: slot taken for client=%d: %v", clientID, err)
		return workflow.SlotTaken(), nil
	case errors.Is(err, finalize_booking.ErrProviderNotFound):
		return workflow.Rejected(workflow.StepSelectProvider, "мастер"), nil
	case errors.Is(err, finalize_booking.ErrServiceNotFound):
		return workflow.Rejected(workflow.StepSelectService, "услуга"), nil
	case errors.Is(err, domain.ErrValidation):
		uc.logger.Warn("BookingConversation: draft rejected for client=%d: %v", clientID, err)
		return workflow.Rejected(workflow.StepSelectTime, "время"), nil
	}
	return workflow.Event{}, err
}

// promptFor строит ответ для текущего шага без прогона автомата
func (uc *UseCase) promptFor(ctx context.Context, state workflow.State) (*Prompt, error) {
	if state.IsTerminal() {
		return endPrompt(workflow.Effect{Kind: workflow.EffectEnd, Step: state.Step}), nil
	}
	p, feedback, err := uc.render(ctx, state, state.Step)
	if err != nil {
		return nil, err
	}
	if feedback != nil {
		return nil, fmt.Errorf("%w: step %s cannot be rendered", ErrInternal, state.Step)
	}
	return p, nil
}

func (uc *UseCase) restart(ctx context.Context, clientID int64, now time.Time) (*Prompt, error) {
	sess := workflow.NewSession(clientID, now, uc.draftTTL)

	prompt, err := uc.promptFor(ctx, sess.State)
	if err != nil {
		uc.logger.Error("BookingConversation.Handle: failed to render prompt: %v", err)
		return nil, err
	}
	if err := uc.sessions.Save(ctx, sess); err != nil {
		uc.logger.Error("BookingConversation.Handle: failed to save session for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: failed to save session: %w", ErrInternal, err)
	}

	uc.metrics.IncConversationEvent("restart")
	return withNotices(prompt, []string{textRestarted}), nil
}

func decodeInput(in *Input) workflow.Event {
	if in.Token != "" {
		return workflow.DecodeToken(in.Token)
	}
	if in.Text != "" {
		return workflow.Text(in.Text)
	}
	return workflow.Unknown()
}

func newClient(req *StartRequest) (*domain.Client, error) {
	if req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}
	if err := domain.ValidateDisplayName(req.DisplayName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	client := &domain.Client{ID: req.ClientID, DisplayName: strings.TrimSpace(req.DisplayName)}
	if req.Contact != nil {
		contact, err := domain.NormalizeContact(*req.Contact)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		client.Contact = &contact
	}
	return client, nil
}
