package start_conversation

import (
	"context"

	bookingConversation "github.com/m04kA/SMC-BookingEngine/internal/usecase/booking_conversation"
)

type ConversationUseCase interface {
	Start(ctx context.Context, req *bookingConversation.StartRequest) (*bookingConversation.Prompt, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
