package start_conversation

import (
	bookingConversation "github.com/m04kA/SMC-BookingEngine/internal/usecase/booking_conversation"
)

// StartConversationRequest HTTP request model
type StartConversationRequest struct {
	DisplayName string  `json:"displayName"`
	Contact     *string `json:"contact,omitempty"` // телефон, необязательно
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *StartConversationRequest) ToUseCaseRequest(clientID int64) *bookingConversation.StartRequest {
	return &bookingConversation.StartRequest{
		ClientID:    clientID,
		DisplayName: r.DisplayName,
		Contact:     r.Contact,
	}
}
