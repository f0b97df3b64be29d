package mark_day_off

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/templates"
	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
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

// Handle POST /api/v1/providers/{providerId}/days-off
// Повторная отметка той же даты возвращает 204
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req models.DayOffRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/days-off - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ProviderID = providerID
	req.UserID, _ = middleware.GetUserID(r.Context())

	if err := h.service.MarkDayOff(r.Context(), &req); err != nil {
		status := handlers.RespondDomainError(w, err, templates.ErrAccessDenied)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /providers/{id}/days-off - Failed: provider_id=%d, date=%s, error=%v", providerID, req.Date, err)
		}
		return
	}

	h.logger.Info("POST /providers/{id}/days-off - Day off marked: provider_id=%d, date=%s", providerID, req.Date)
	w.WriteHeader(http.StatusNoContent)
}
