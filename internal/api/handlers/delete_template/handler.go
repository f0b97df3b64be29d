package delete_template

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/templates"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidDayOfWeek  = "некорректный день недели, ожидается 0..6"
	msgNotFound          = "расписание на этот день не задано"
	msgForbidden         = "доступ запрещен"
)

type Handler struct {
	service TemplateService
	logger  Logger
}

func NewHandler(service TemplateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/providers/{providerId}/templates/{dayOfWeek}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}
	day, err := strconv.Atoi(vars["dayOfWeek"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDayOfWeek)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.RemoveTemplate(r.Context(), providerID, userID, day); err != nil {
		switch {
		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("DELETE /providers/{id}/templates/{day} - Access denied: provider_id=%d, user_id=%d", providerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, templates.ErrTemplateNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, templates.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDayOfWeek)

		default:
			h.logger.Error("DELETE /providers/{id}/templates/{day} - Failed: provider_id=%d, day=%d, error=%v", providerID, day, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /providers/{id}/templates/{day} - Template removed: provider_id=%d, day=%d", providerID, day)
	w.WriteHeader(http.StatusNoContent)
}
