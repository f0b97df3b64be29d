package conversation_event

import (
	"context"

	bookingConversation "github.com/m04kA/SMC-BookingEngine/internal/usecase/booking_conversation"
)

type ConversationUseCase interface {
	Handle(ctx context.Context, in *bookingConversation.Input) (*bookingConversation.Prompt, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
