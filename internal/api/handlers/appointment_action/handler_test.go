package appointment_action

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments/models"
)

type call struct {
	action string
	id     int64
	actor  domain.Actor
	reason *string
}

type fakeService struct {
	last call
	err  error
}

func (f *fakeService) respond(action string, id int64, actor domain.Actor, reason *string, status string) (*models.AppointmentResponse, error) {
	f.last = call{action, id, actor, reason}
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResponse{ID: id, Status: status}, nil
}

func (f *fakeService) Accept(_ context.Context, id, providerID int64) (*models.AppointmentResponse, error) {
	return f.respond("accept", id, domain.Actor{Role: domain.RoleProvider, ID: providerID}, nil, "confirmed")
}

func (f *fakeService) Reject(_ context.Context, id, providerID int64, reason *string) (*models.AppointmentResponse, error) {
	return f.respond("reject", id, domain.Actor{Role: domain.RoleProvider, ID: providerID}, reason, "cancelled")
}

func (f *fakeService) Cancel(_ context.Context, id int64, actor domain.Actor, reason *string) (*models.AppointmentResponse, error) {
	return f.respond("cancel", id, actor, reason, "cancelled")
}

func (f *fakeService) Complete(_ context.Context, id, providerID int64) (*models.AppointmentResponse, error) {
	return f.respond("complete", id, domain.Actor{Role: domain.RoleProvider, ID: providerID}, nil, "completed")
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func do(h *Handler, id, action, body string, actor domain.Actor) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id, "action": action})
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_DispatchesActions(t *testing.T) {
	provider := domain.Actor{Role: domain.RoleProvider, ID: 1}
	client := domain.Actor{Role: domain.RoleClient, ID: 100}

	tests := []struct {
		action     string
		body       string
		actor      domain.Actor
		wantStatus string
	}{
		{"accept", "", provider, "confirmed"},
		{"reject", `{"reason":"болею"}`, provider, "cancelled"},
		{"complete", "", provider, "completed"},
		{"cancel", `{"reason":"не успеваю"}`, client, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(NewHandler(svc, nopLogger{}), "15", tt.action, tt.body, tt.actor)

			require.Equal(t, http.StatusOK, rec.Code)
			var resp models.AppointmentResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.action, svc.last.action)
			assert.Equal(t, int64(15), svc.last.id)
			assert.Equal(t, tt.actor.ID, svc.last.actor.ID)
		})
	}
}

func TestHandler_CancelKeepsActorRole(t *testing.T) {
	svc := &fakeService{}
	client := domain.Actor{Role: domain.RoleClient, ID: 100}

	rec := do(NewHandler(svc, nopLogger{}), "15", "cancel", "", client)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, client, svc.last.actor)
	assert.Nil(t, svc.last.reason)
}

func TestHandler_Errors(t *testing.T) {
	provider := domain.Actor{Role: domain.RoleProvider, ID: 1}

	tests := []struct {
		name   string
		id     string
		action string
		body   string
		err    error
		want   int
	}{
		{"некорректный ID", "abc", "accept", "", nil, http.StatusBadRequest},
		{"неизвестное действие", "15", "archive", "", nil, http.StatusBadRequest},
		{"битое тело", "15", "reject", "{", nil, http.StatusBadRequest},
		{"не найдено", "15", "accept", "", appointments.ErrAppointmentNotFound, http.StatusNotFound},
		{"чужая запись", "15", "accept", "", appointments.ErrAccessDenied, http.StatusForbidden},
		{"недопустимый переход", "15", "complete", "", fmt.Errorf("%w: pending", appointments.ErrInvalidTransition), http.StatusConflict},
		{"слишком длинная причина", "15", "reject", "", appointments.ErrInvalidInput, http.StatusBadRequest},
		{"ошибка хранилища", "15", "accept", "", appointments.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(NewHandler(&fakeService{err: tt.err}, nopLogger{}), tt.id, tt.action, tt.body, provider)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
