package booking_conversation

import "github.com/m04kA/SMC-BookingEngine/internal/workflow"

// StartRequest начало новой записи
type StartRequest struct {
	ClientID    int64
	DisplayName string
	Contact     *string
}

// Input ход клиента: нажатая кнопка (Token) или свободный текст (Text)
type Input struct {
	ClientID int64
	Token    string
	Text     string
}

// Option кнопка ответа
type Option struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Prompt ответ диалога клиенту
type Prompt struct {
	Step          workflow.Step `json:"step"`
	Text          string        `json:"text"`
	Options       []Option      `json:"options"`
	Finished      bool          `json:"finished"`
	AppointmentID *int64        `json:"appointmentId,omitempty"`
}
