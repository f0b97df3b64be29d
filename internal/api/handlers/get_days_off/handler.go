package get_days_off

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidRange      = "параметры from и to обязательны в формате YYYY-MM-DD"
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

// Handle GET /api/v1/providers/{providerId}/days-off?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	from, errFrom := time.Parse(domain.DateFormat, r.URL.Query().Get("from"))
	to, errTo := time.Parse(domain.DateFormat, r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil {
		h.logger.Warn("GET /providers/{id}/days-off - Invalid range: from=%q, to=%q",
			r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}

	result, err := h.service.GetDaysOff(r.Context(), providerID, from, to)
	if err != nil {
		if handlers.RespondDomainError(w, err) == http.StatusInternalServerError {
			h.logger.Error("GET /providers/{id}/days-off - Failed: provider_id=%d, error=%v", providerID, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.DaysOff)
}
