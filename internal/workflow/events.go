package workflow

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// EventKind вид события
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSelectProvider
	EventSelectService
	EventSelectDate
	EventSelectTime
	EventBack
	EventCancel
	EventAddComment
	EventConfirm
	EventText

	// Ответ драйвера после EffectFinalize или неудачной загрузки
	EventSlotTaken
	EventFinalized
	EventRejected
)

var eventNames = map[EventKind]string{
	EventUnknown:        "unknown",
	EventSelectProvider: "select_provider",
	EventSelectService:  "select_service",
	EventSelectDate:     "select_date",
	EventSelectTime:     "select_time",
	EventBack:           "back",
	EventCancel:         "cancel",
	EventAddComment:     "add_comment",
	EventConfirm:        "confirm",
	EventText:           "text",
	EventSlotTaken:      "slot_taken",
	EventFinalized:      "finalized",
	EventRejected:       "rejected",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event входное событие диалога. Значимы только поля, относящиеся к его Kind
type Event struct {
	Kind          EventKind
	ProviderID    int64
	ServiceID     int64
	Date          time.Time
	Time          types.TimeString
	Text          string
	AppointmentID int64
	// RejectedAt шаг, значение которого отклонил драйвер (EventRejected)
	RejectedAt Step
}

func SelectProvider(id int64) Event { return Event{Kind: EventSelectProvider, ProviderID: id} }

func SelectService(id int64) Event { return Event{Kind: EventSelectService, ServiceID: id} }

func SelectDate(date time.Time) Event { return Event{Kind: EventSelectDate, Date: date} }

func SelectTime(t types.TimeString) Event { return Event{Kind: EventSelectTime, Time: t} }

func Back() Event { return Event{Kind: EventBack} }

func Cancel() Event { return Event{Kind: EventCancel} }

func AddComment() Event { return Event{Kind: EventAddComment} }

func Confirm() Event { return Event{Kind: EventConfirm} }

func Text(text string) Event { return Event{Kind: EventText, Text: text} }

func Unknown() Event { return Event{Kind: EventUnknown} }

func SlotTaken() Event { return Event{Kind: EventSlotTaken} }

func Finalized(appointmentID int64) Event {
	return Event{Kind: EventFinalized, AppointmentID: appointmentID}
}

// Rejected сообщает, что выбранное на шаге значение больше не годится (не найдено, неактивно, невалидно)
func Rejected(step Step, reason string) Event {
	return Event{Kind: EventRejected, RejectedAt: step, Text: reason}
}
