package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

type fakeUseCase struct {
	req *getAvailableSlots.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &getAvailableSlots.Response{
		ProviderID:      req.ProviderID,
		ServiceID:       req.ServiceID,
		Date:            req.Date,
		DurationMinutes: 30,
		Slots: []domain.Slot{
			{ProviderID: req.ProviderID, Date: req.Date, StartTime: "09:30", EndTime: "10:00"},
			{ProviderID: req.ProviderID, Date: req.Date, StartTime: "10:00", EndTime: "10:30"},
		},
	}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func get(h *Handler, providerID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/"+providerID+"/available-slots?"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"providerId": providerID})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_ReturnsSlots(t *testing.T) {
	uc := &fakeUseCase{}

	rec := get(NewHandler(uc, nopLogger{}), "1", "serviceId=3&date=2030-03-04")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), uc.req.Date)

	var resp AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2030-03-04", resp.Date)
	assert.Equal(t, int64(3), resp.ServiceID)
	assert.Equal(t, []AvailableSlot{{"09:30", "10:00"}, {"10:00", "10:30"}}, resp.Slots)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		providerID string
		query      string
		err        error
		want       int
	}{
		{"нет услуги", "1", "date=2030-03-04", nil, http.StatusBadRequest},
		{"нет даты", "1", "serviceId=3", nil, http.StatusBadRequest},
		{"формат даты", "1", "serviceId=3&date=04.03.2030", nil, http.StatusBadRequest},
		{"ID мастера", "x", "serviceId=3&date=2030-03-04", nil, http.StatusBadRequest},
		{"мастер не найден", "1", "serviceId=3&date=2030-03-04", getAvailableSlots.ErrProviderNotFound, http.StatusNotFound},
		{"услуга не найдена", "1", "serviceId=3&date=2030-03-04", getAvailableSlots.ErrServiceNotFound, http.StatusNotFound},
		{"дата в прошлом", "1", "serviceId=3&date=2030-03-04", getAvailableSlots.ErrDateInPast, http.StatusBadRequest},
		{"внутренняя", "1", "serviceId=3&date=2030-03-04", getAvailableSlots.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(NewHandler(&fakeUseCase{err: tt.err}, nopLogger{}), tt.providerID, tt.query)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
