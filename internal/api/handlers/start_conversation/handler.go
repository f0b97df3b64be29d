package start_conversation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase ConversationUseCase
	logger  Logger
}

func NewHandler(useCase ConversationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/conversations/start
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req StartConversationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /conversations/start - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	prompt, err := h.useCase.Start(r.Context(), req.ToUseCaseRequest(clientID))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.logger.Warn("POST /conversations/start - Validation failed: client_id=%d, error=%v", clientID, err)
			handlers.RespondBadRequest(w, err.Error())
			return
		}
		h.logger.Error("POST /conversations/start - Failed to start conversation: client_id=%d, error=%v", clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /conversations/start - Conversation started: client_id=%d, step=%s", clientID, prompt.Step)
	handlers.RespondJSON(w, http.StatusOK, prompt)
}
