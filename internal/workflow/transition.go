package workflow

import (
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Transition вычисляет следующее состояние и эффекты, которые выполнит драйвер.
// Функция чистая: без ввода-вывода, входное состояние не изменяется.
//
// Нераспознанный или неуместный для шага ввод оставляет состояние прежним и повторяет запрос.
// Завершенные состояния игнорируют любые события.
func Transition(s State, ev Event) (State, []Effect) {
	if s.IsTerminal() {
		return s, nil
	}
	if !s.Step.Valid() {
		return Initial(), []Effect{prompt(StepSelectProvider)}
	}

	switch ev.Kind {
	case EventCancel:
		return State{Step: StepAborted}, []Effect{end(StepAborted, 0)}

	case EventBack:
		next := State{Step: previous[s.Step], Draft: s.Draft}
		return next, []Effect{prompt(next.Step)}

	case EventSelectProvider:
		if s.Step != StepSelectProvider || ev.ProviderID <= 0 {
			break
		}
		d := s.Draft
		if d.ProviderID != ev.ProviderID {
			d = d.clearFrom(StepSelectService)
		}
		d.ProviderID = ev.ProviderID
		return advance(StepSelectService, d)

	case EventSelectService:
		if s.Step != StepSelectService || ev.ServiceID <= 0 {
			break
		}
		d := s.Draft
		if d.ServiceID != ev.ServiceID {
			d = d.clearFrom(StepSelectDate)
		}
		d.ServiceID = ev.ServiceID
		return advance(StepSelectDate, d)

	case EventSelectDate:
		if s.Step != StepSelectDate || ev.Date.IsZero() {
			break
		}
		date := domain.TruncateDate(ev.Date)
		d := s.Draft
		if !d.Date.Equal(date) {
			d = d.clearFrom(StepSelectTime)
		}
		d.Date = date
		return advance(StepSelectTime, d)

	case EventSelectTime:
		if s.Step != StepSelectTime || ev.Time.Validate() != nil {
			break
		}
		d := s.Draft
		if !d.Time.Equal(ev.Time) {
			d = d.clearFrom(StepConfirm)
		}
		d.Time = ev.Time
		return advance(StepConfirm, d)

	case EventAddComment:
		if s.Step != StepConfirm {
			break
		}
		return State{Step: StepComment, Draft: s.Draft}, []Effect{awaitComment()}

	case EventConfirm:
		if s.Step != StepConfirm || !s.Draft.Complete() {
			break
		}
		return s, []Effect{finalize(s.Step)}

	case EventText:
		if s.Step != StepComment {
			break
		}
		comment, ok := normalizeComment(ev.Text)
		if !ok {
			return s, []Effect{notice(NoticeInvalidComment, ""), awaitComment()}
		}
		if !s.Draft.Complete() {
			break
		}
		d := s.Draft
		d.Comment = comment
		return State{Step: StepComment, Draft: d}, []Effect{finalize(StepComment)}

	case EventSlotTaken:
		if !awaitingFinalization(s) {
			break
		}
		d := s.Draft.clearFrom(StepSelectTime)
		return State{Step: StepSelectTime, Draft: d}, []Effect{notice(NoticeSlotTaken, ""), prompt(StepSelectTime)}

	case EventFinalized:
		if !awaitingFinalization(s) {
			break
		}
		return State{Step: StepFinalized, Draft: s.Draft}, []Effect{end(StepFinalized, ev.AppointmentID)}

	case EventRejected:
		step := ev.RejectedAt
		if !isSelectionStep(step) || stepIndex(step) > stepIndex(s.Step) {
			break
		}
		d := s.Draft.clearFrom(step)
		return State{Step: step, Draft: d}, []Effect{notice(NoticeUnavailable, ev.Text), prompt(step)}
	}

	return s, []Effect{reprompt(s)}
}

func advance(step Step, d Draft) (State, []Effect) {
	return State{Step: step, Draft: d}, []Effect{prompt(step)}
}

func awaitingFinalization(s State) bool {
	return (s.Step == StepConfirm || s.Step == StepComment) && s.Draft.Complete()
}

var order = []Step{StepSelectProvider, StepSelectService, StepSelectDate, StepSelectTime, StepConfirm, StepComment}

func stepIndex(step Step) int {
	for i, s := range order {
		if s == step {
			return i
		}
	}
	return -1
}

func isSelectionStep(step Step) bool {
	switch step {
	case StepSelectProvider, StepSelectService, StepSelectDate, StepSelectTime:
		return true
	}
	return false
}

// normalizeComment обрезает пробелы и проверяет длину 1..MaxCommentLength символов
func normalizeComment(text string) (string, bool) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n == 0 || n > domain.MaxCommentLength {
		return "", false
	}
	return text, true
}
