package booking_conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_dates"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/workflow"
)

const (
	textSelectProvider = "Выберите мастера:"
	textSelectService  = "Выберите услугу:"
	textSelectDate     = "Выберите дату:"
	textSelectTime     = "Выберите время на %s:"
	textConfirm        = "Проверьте запись:\nМастер: %s\nУслуга: %s\nДата: %s\nВремя: %s-%s\nСтоимость: %.0f ₽"
	textComment        = "Напишите комментарий к записи (до %d символов):"
	textFinalized      = "Запись создана и ожидает подтверждения мастера."
	textAborted        = "Запись отменена."
	textFailure        = "Не удалось завершить запись. Попробуйте позже."
	textRestarted      = "Черновик записи устарел, начнем сначала."

	textNoProviders = "Сейчас нет доступных мастеров."
	textNoServices  = "У мастера нет доступных услуг."
	textNoDates     = "В ближайшие дни нет свободных дат."
	textNoSlots     = "На эту дату нет свободного времени."

	noticeSlotTaken      = "Это время уже заняли, выберите другое."
	noticeInvalidComment = "Комментарий должен содержать от 1 до %d символов."
	noticeUnavailable    = "Выбранный вариант больше недоступен"

	labelBack       = "Назад"
	labelCancel     = "Отменить"
	labelConfirm    = "Подтвердить"
	labelAddComment = "Добавить комментарий"

	displayDateFormat = "02.01.2006"
)

var weekdayShort = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

var (
	optionBack    = Option{Label: labelBack, Token: workflow.EncodeToken(workflow.Back())}
	optionCancel  = Option{Label: labelCancel, Token: workflow.EncodeToken(workflow.Cancel())}
	optionConfirm = Option{Label: labelConfirm, Token: workflow.EncodeToken(workflow.Confirm())}
	optionComment = Option{Label: labelAddComment, Token: workflow.EncodeToken(workflow.AddComment())}
)

// render строит ответ для шага. Если выбранное ранее значение больше недоступно,
// возвращает событие Rejected для повторного прогона автомата
func (uc *UseCase) render(ctx context.Context, state workflow.State, step workflow.Step) (*Prompt, *workflow.Event, error) {
	switch step {
	case workflow.StepSelectProvider:
		return uc.renderProviders(ctx)
	case workflow.StepSelectService:
		return uc.renderServices(ctx, state.Draft)
	case workflow.StepSelectDate:
		return uc.renderDates(ctx, state.Draft)
	case workflow.StepSelectTime:
		return uc.renderSlots(ctx, state.Draft)
	case workflow.StepConfirm:
		return uc.renderConfirm(ctx, state.Draft)
	case workflow.StepComment:
		return &Prompt{
			Step:    workflow.StepComment,
			Text:    fmt.Sprintf(textComment, domain.MaxCommentLength),
			Options: []Option{optionBack, optionCancel},
		}, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: unexpected step %q", ErrInternal, step)
}

func (uc *UseCase) renderProviders(ctx context.Context) (*Prompt, *workflow.Event, error) {
	providers, err := uc.catalogRepo.ListActiveProviders(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to list providers: %w", ErrInternal, err)
	}

	p := &Prompt{Step: workflow.StepSelectProvider, Text: textSelectProvider}
	if len(providers) == 0 {
		p.Text = textNoProviders
	}
	for _, provider := range providers {
		p.Options = append(p.Options, Option{
			Label: provider.DisplayName,
			Token: workflow.EncodeToken(workflow.SelectProvider(provider.ID)),
		})
	}
	p.Options = append(p.Options, optionCancel)
	return p, nil, nil
}

func (uc *UseCase) renderServices(ctx context.Context, d workflow.Draft) (*Prompt, *workflow.Event, error) {
	if _, feedback, err := uc.checkProvider(ctx, d.ProviderID); feedback != nil || err != nil {
		return nil, feedback, err
	}

	services, err := uc.catalogRepo.ListActiveServices(ctx, d.ProviderID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to list services: %w", ErrInternal, err)
	}

	p := &Prompt{Step: workflow.StepSelectService, Text: textSelectService}
	if len(services) == 0 {
		p.Text = textNoServices
	}
	for _, s := range services {
		p.Options = append(p.Options, Option{
			Label: fmt.Sprintf("%s, %.0f ₽, %d мин", s.Name, s.Price, s.DurationMinutes),
			Token: workflow.EncodeToken(workflow.SelectService(s.ID)),
		})
	}
	p.Options = append(p.Options, optionBack, optionCancel)
	return p, nil, nil
}

func (uc *UseCase) renderDates(ctx context.Context, d workflow.Draft) (*Prompt, *workflow.Event, error) {
	resp, err := uc.dates.Execute(ctx, &get_available_dates.Request{ProviderID: d.ProviderID, ServiceID: d.ServiceID})
	if err != nil {
		switch {
		case errors.Is(err, get_available_dates.ErrProviderNotFound):
			return nil, rejected(workflow.StepSelectProvider, "мастер"), nil
		case errors.Is(err, get_available_dates.ErrServiceNotFound):
			return nil, rejected(workflow.StepSelectService, "услуга"), nil
		}
		return nil, nil, fmt.Errorf("%w: failed to get dates: %w", ErrInternal, err)
	}

	p := &Prompt{Step: workflow.StepSelectDate, Text: textSelectDate}
	if len(resp.Dates) == 0 {
		p.Text = textNoDates
	}
	for _, date := range resp.Dates {
		p.Options = append(p.Options, Option{
			Label: fmt.Sprintf("%s %s", weekdayShort[date.Weekday()], date.Format("02.01")),
			Token: workflow.EncodeToken(workflow.SelectDate(date)),
		})
	}
	p.Options = append(p.Options, optionBack, optionCancel)
	return p, nil, nil
}

func (uc *UseCase) renderSlots(ctx context.Context, d workflow.Draft) (*Prompt, *workflow.Event, error) {
	resp, err := uc.slots.Execute(ctx, &get_available_slots.Request{
		ProviderID: d.ProviderID,
		ServiceID:  d.ServiceID,
		Date:       d.Date,
	})
	if err != nil {
		if feedback := slotsFeedback(err); feedback != nil {
			return nil, feedback, nil
		}
		return nil, nil, fmt.Errorf("%w: failed to get slots: %w", ErrInternal, err)
	}

	p := &Prompt{Step: workflow.StepSelectTime, Text: fmt.Sprintf(textSelectTime, d.Date.Format(displayDateFormat))}
	if len(resp.Slots) == 0 {
		p.Text = textNoSlots
	}
	for _, slot := range resp.Slots {
		p.Options = append(p.Options, Option{
			Label: slot.StartTime.String(),
			Token: workflow.EncodeToken(workflow.SelectTime(slot.StartTime)),
		})
	}
	p.Options = append(p.Options, optionBack, optionCancel)
	return p, nil, nil
}

func (uc *UseCase) renderConfirm(ctx context.Context, d workflow.Draft) (*Prompt, *workflow.Event, error) {
	provider, feedback, err := uc.checkProvider(ctx, d.ProviderID)
	if feedback != nil || err != nil {
		return nil, feedback, err
	}

	service, err := uc.catalogRepo.GetService(ctx, d.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, rejected(workflow.StepSelectService, "услуга"), nil
		}
		return nil, nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.Active || service.ProviderID != d.ProviderID {
		return nil, rejected(workflow.StepSelectService, "услуга"), nil
	}

	end, err := d.Time.AddMinutes(service.DurationMinutes)
	if err != nil {
		return nil, rejected(workflow.StepSelectTime, "время"), nil
	}

	text := fmt.Sprintf(textConfirm,
		provider.DisplayName, service.Name, d.Date.Format(displayDateFormat), d.Time, end, service.Price)
	if d.Comment != "" {
		text += "\nКомментарий: " + d.Comment
	}

	return &Prompt{
		Step:    workflow.StepConfirm,
		Text:    text,
		Options: []Option{optionConfirm, optionComment, optionBack, optionCancel},
	}, nil, nil
}

func (uc *UseCase) checkProvider(ctx context.Context, providerID int64) (*domain.Provider, *workflow.Event, error) {
	provider, err := uc.catalogRepo.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, rejected(workflow.StepSelectProvider, "мастер"), nil
		}
		return nil, nil, fmt.Errorf("%w: failed to get provider: %w", ErrInternal, err)
	}
	if !provider.Active {
		return nil, rejected(workflow.StepSelectProvider, "мастер"), nil
	}
	return provider, nil, nil
}

// slotsFeedback переводит ошибки движка доступности в откат к шагу выбора
func slotsFeedback(err error) *workflow.Event {
	switch {
	case errors.Is(err, get_available_slots.ErrProviderNotFound):
		return rejected(workflow.StepSelectProvider, "мастер")
	case errors.Is(err, get_available_slots.ErrServiceNotFound):
		return rejected(workflow.StepSelectService, "услуга")
	case errors.Is(err, domain.ErrValidation):
		return rejected(workflow.StepSelectDate, "дата")
	}
	return nil
}

func rejected(step workflow.Step, what string) *workflow.Event {
	ev := workflow.Rejected(step, what)
	return &ev
}

func noticeText(eff workflow.Effect) string {
	switch eff.Notice {
	case workflow.NoticeSlotTaken:
		return noticeSlotTaken
	case workflow.NoticeInvalidComment:
		return fmt.Sprintf(noticeInvalidComment, domain.MaxCommentLength)
	case workflow.NoticeUnavailable:
		if eff.Detail != "" {
			return noticeUnavailable + ": " + eff.Detail + "."
		}
		return noticeUnavailable + "."
	}
	return ""
}

func endPrompt(eff workflow.Effect) *Prompt {
	p := &Prompt{Step: eff.Step, Finished: true, Options: []Option{}}
	if eff.Step == workflow.StepFinalized {
		p.Text = textFinalized
		id := eff.AppointmentID
		p.AppointmentID = &id
	} else {
		p.Text = textAborted
	}
	return p
}

func failurePrompt() *Prompt {
	return &Prompt{Step: workflow.StepAborted, Text: textFailure, Finished: true, Options: []Option{}}
}

func withNotices(p *Prompt, notices []string) *Prompt {
	if len(notices) == 0 {
		return p
	}
	p.Text = strings.Join(append(notices, p.Text), "\n\n")
	return p
}
