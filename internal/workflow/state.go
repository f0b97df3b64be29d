package workflow

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Step шаг диалога
type Step string

const (
	StepSelectProvider Step = "select_provider"
	StepSelectService  Step = "select_service"
	StepSelectDate     Step = "select_date"
	StepSelectTime     Step = "select_time"
	StepConfirm        Step = "confirm"
	StepComment        Step = "comment"
	StepFinalized      Step = "finalized"
	StepAborted        Step = "aborted"
)

// предыдущий шаг для Back. Первый шаг ведет сам на себя
var previous = map[Step]Step{
	StepSelectProvider: StepSelectProvider,
	StepSelectService:  StepSelectProvider,
	StepSelectDate:     StepSelectService,
	StepSelectTime:     StepSelectDate,
	StepConfirm:        StepSelectTime,
	StepComment:        StepConfirm,
}

// IsTerminal возвращает true для шагов, которые больше не принимают события
func (s Step) IsTerminal() bool {
	return s == StepFinalized || s == StepAborted
}

// Valid проверяет, что шаг известен
func (s Step) Valid() bool {
	if s.IsTerminal() {
		return true
	}
	_, ok := previous[s]
	return ok
}

// Draft собранные поля записи. Нулевое значение означает "не выбрано"
type Draft struct {
	ProviderID int64            `json:"providerId,omitempty"`
	ServiceID  int64            `json:"serviceId,omitempty"`
	Date       time.Time        `json:"date"`
	Time       types.TimeString `json:"time,omitempty"`
	Comment    string           `json:"comment,omitempty"`
}

// HasDate возвращает true, если дата выбрана
func (d Draft) HasDate() bool {
	return !d.Date.IsZero()
}

// Complete возвращает true, если заполнены все поля для оформления записи
func (d Draft) Complete() bool {
	return d.ProviderID > 0 && d.ServiceID > 0 && d.HasDate() && !d.Time.IsZero()
}

// clearFrom сбрасывает значение шага и все зависящие от него значения
func (d Draft) clearFrom(step Step) Draft {
	switch step {
	case StepSelectProvider:
		d.ProviderID = 0
		fallthrough
	case StepSelectService:
		d.ServiceID = 0
		fallthrough
	case StepSelectDate:
		d.Date = time.Time{}
		fallthrough
	case StepSelectTime:
		d.Time = ""
		fallthrough
	case StepConfirm, StepComment:
		d.Comment = ""
	}
	return d
}

// State состояние одного диалога записи. Значения не изменяются на месте,
// Transition возвращает новое State
type State struct {
	Step  Step  `json:"step"`
	Draft Draft `json:"draft"`
}

// Initial возвращает состояние нового диалога
func Initial() State {
	return State{Step: StepSelectProvider}
}

// IsTerminal возвращает true, если диалог завершен
func (s State) IsTerminal() bool {
	return s.Step.IsTerminal()
}
