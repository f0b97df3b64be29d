package set_template

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
	msgInvalidDayOfWeek   = "некорректный день недели, ожидается 0..6"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
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

// Handle PUT /api/v1/providers/{providerId}/templates/{dayOfWeek}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /providers/{id}/templates/{day} - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	day, err := strconv.Atoi(vars["dayOfWeek"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDayOfWeek)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.SetTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/templates/{day} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.ProviderID = providerID
	req.DayOfWeek = day

	result, err := h.service.SetTemplate(r.Context(), &req)
	if err != nil {
		status := handlers.RespondDomainError(w, err, templates.ErrAccessDenied)
		if status == http.StatusInternalServerError {
			h.logger.Error("PUT /providers/{id}/templates/{day} - Failed: provider_id=%d, day=%d, error=%v", providerID, day, err)
		} else {
			h.logger.Warn("PUT /providers/{id}/templates/{day} - Rejected with %d: provider_id=%d, day=%d, error=%v",
				status, providerID, day, err)
		}
		return
	}

	h.logger.Info("PUT /providers/{id}/templates/{day} - Template saved: provider_id=%d, day=%d", providerID, day)
	handlers.RespondJSON(w, http.StatusOK, result)
}
