package set_provider_active

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/service/catalog/models"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/providers/{providerId}
// Body: {"active": false} скрывает мастера из диалога записи
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req models.SetActiveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())

	if err := h.service.SetProviderActive(r.Context(), providerID, &req); err != nil {
		if handlers.RespondDomainError(w, err, catalog.ErrAccessDenied) == http.StatusInternalServerError {
			h.logger.Error("PATCH /providers/{id} - Failed: provider_id=%d, error=%v", providerID, err)
		}
		return
	}

	h.logger.Info("PATCH /providers/{id} - Provider updated: provider_id=%d, active=%t", providerID, req.Active)
	w.WriteHeader(http.StatusNoContent)
}
