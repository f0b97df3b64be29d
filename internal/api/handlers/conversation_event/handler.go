package conversation_event

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
	msgEmptyEvent         = "нужен token или text"
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

// Handle POST /api/v1/conversations/events
// Ошибки шагов диалога возвращаются в тексте подсказки со статусом 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ConversationEventRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /conversations/events - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Token == "" && req.Text == "" {
		handlers.RespondBadRequest(w, msgEmptyEvent)
		return
	}

	prompt, err := h.useCase.Handle(r.Context(), req.ToUseCaseInput(clientID))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			handlers.RespondBadRequest(w, err.Error())
			return
		}
		h.logger.Error("POST /conversations/events - Failed to handle event: client_id=%d, error=%v", clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /conversations/events - client_id=%d, step=%s, finished=%t", clientID, prompt.Step, prompt.Finished)
	handlers.RespondJSON(w, http.StatusOK, prompt)
}
