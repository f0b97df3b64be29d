package set_service_active

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
	msgInvalidServiceID   = "некорректный ID услуги"
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

// Handle PATCH /api/v1/services/{serviceId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(mux.Vars(r)["serviceId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	var req models.SetActiveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())

	if err := h.service.SetServiceActive(r.Context(), serviceID, &req); err != nil {
		if handlers.RespondDomainError(w, err, catalog.ErrAccessDenied) == http.StatusInternalServerError {
			h.logger.Error("PATCH /services/{id} - Failed: service_id=%d, error=%v", serviceID, err)
		}
		return
	}

	h.logger.Info("PATCH /services/{id} - Service updated: service_id=%d, active=%t", serviceID, req.Active)
	w.WriteHeader(http.StatusNoContent)
}
