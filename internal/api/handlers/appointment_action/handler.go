package appointment_action

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgUnknownAction        = "неизвестное действие, ожидается accept, reject, complete или cancel"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
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

// Handle POST /api/v1/appointments/{appointmentId}/{action}
// action: accept | reject | complete | cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/{action} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	action := domain.AppointmentAction(vars["action"])
	if !action.Valid() {
		h.logger.Warn("POST /appointments/{id}/{action} - Unknown action: %q", vars["action"])
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ActionRequest
	if err := handlers.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/{action} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var result *models.AppointmentResponse
	switch action {
	case domain.ActionAccept:
		result, err = h.service.Accept(r.Context(), appointmentID, actor.ID)
	case domain.ActionReject:
		result, err = h.service.Reject(r.Context(), appointmentID, actor.ID, req.Reason)
	case domain.ActionComplete:
		result, err = h.service.Complete(r.Context(), appointmentID, actor.ID)
	case domain.ActionCancel:
		result, err = h.service.Cancel(r.Context(), appointmentID, actor, req.Reason)
	}
	if err != nil {
		status := handlers.RespondDomainError(w, err, appointments.ErrAccessDenied)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /appointments/{id}/%s - Failed: appointment_id=%d, user_id=%d, error=%v",
				action, appointmentID, actor.ID, err)
		} else {
			h.logger.Warn("POST /appointments/{id}/%s - Rejected with %d: appointment_id=%d, user_id=%d, error=%v",
				action, status, appointmentID, actor.ID, err)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/%s - Appointment updated: appointment_id=%d, status=%s",
		action, appointmentID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
