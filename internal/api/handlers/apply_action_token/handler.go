package apply_action_token

import (
	"net/http"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingToken       = "токен действия обязателен"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/actions
// Токен из кнопки уведомления: appt:<action>:<id> или review:<id>:<rating>
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ApplyTokenRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /actions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	result, err := h.service.ApplyToken(r.Context(), req.Token, actor)
	if err != nil {
		status := handlers.RespondDomainError(w, err, appointments.ErrAccessDenied)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /actions - Failed to apply token %q: user_id=%d, error=%v", req.Token, actor.ID, err)
		} else {
			h.logger.Warn("POST /actions - Token %q rejected with %d: user_id=%d, error=%v", req.Token, status, actor.ID, err)
		}
		return
	}

	h.logger.Info("POST /actions - Token applied: appointment_id=%d, status=%s, user_id=%d",
		result.ID, result.Status, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
