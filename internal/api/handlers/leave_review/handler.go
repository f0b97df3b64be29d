package leave_review

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
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

// Handle POST /api/v1/appointments/{appointmentId}/review
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/review - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ReviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/review - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.LeaveReview(r.Context(), appointmentID, clientID, req.Rating, req.Text)
	if err != nil {
		status := handlers.RespondDomainError(w, err, appointments.ErrAccessDenied)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /appointments/{id}/review - Failed: appointment_id=%d, error=%v", appointmentID, err)
		} else {
			h.logger.Warn("POST /appointments/{id}/review - Rejected with %d: appointment_id=%d, client_id=%d, error=%v",
				status, appointmentID, clientID, err)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/review - Review saved: appointment_id=%d, rating=%d", appointmentID, req.Rating)
	handlers.RespondJSON(w, http.StatusOK, result)
}
