package delete_day_off

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/templates"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
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

// Handle DELETE /api/v1/providers/{providerId}/days-off/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}
	date, err := time.Parse(domain.DateFormat, vars["date"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.RemoveDayOff(r.Context(), providerID, userID, date); err != nil {
		if handlers.RespondDomainError(w, err, templates.ErrAccessDenied) == http.StatusInternalServerError {
			h.logger.Error("DELETE /providers/{id}/days-off/{date} - Failed: provider_id=%d, error=%v", providerID, err)
		}
		return
	}

	h.logger.Info("DELETE /providers/{id}/days-off/{date} - Day off removed: provider_id=%d, date=%s", providerID, vars["date"])
	w.WriteHeader(http.StatusNoContent)
}
