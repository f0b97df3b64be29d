package conversation_event

import (
	bookingConversation "github.com/m04kA/SMC-BookingEngine/internal/usecase/booking_conversation"
)

// ConversationEventRequest нажатая кнопка (token) или свободный текст (text)
type ConversationEventRequest struct {
	Token string `json:"token,omitempty"`
	Text  string `json:"text,omitempty"`
}

// ToUseCaseInput конвертирует HTTP запрос в ход диалога
func (r *ConversationEventRequest) ToUseCaseInput(clientID int64) *bookingConversation.Input {
	return &bookingConversation.Input{
		ClientID: clientID,
		Token:    r.Token,
		Text:     r.Text,
	}
}
