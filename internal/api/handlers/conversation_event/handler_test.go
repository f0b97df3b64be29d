package conversation_event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingConversation "github.com/m04kA/SMC-BookingEngine/internal/usecase/booking_conversation"
	"github.com/m04kA/SMC-BookingEngine/internal/workflow"
)

type fakeUseCase struct {
	in  *bookingConversation.Input
	err error
}

func (f *fakeUseCase) Handle(_ context.Context, in *bookingConversation.Input) (*bookingConversation.Prompt, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &bookingConversation.Prompt{Step: workflow.StepSelectService, Text: "Выберите услугу:"}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func post(h *Handler, body string, withUser bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/events", strings.NewReader(body))
	if withUser {
		req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{Role: domain.RoleClient, ID: 100}))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_PassesTokenToUseCase(t *testing.T) {
	uc := &fakeUseCase{}

	rec := post(NewHandler(uc, nopLogger{}), `{"token":"provider:1"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(100), uc.in.ClientID)
	assert.Equal(t, "provider:1", uc.in.Token)

	var prompt bookingConversation.Prompt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prompt))
	assert.Equal(t, workflow.StepSelectService, prompt.Step)
}

func TestHandler_Errors(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, post(NewHandler(&fakeUseCase{}, nopLogger{}), `{"text":"hi"}`, false).Code)
	assert.Equal(t, http.StatusBadRequest, post(NewHandler(&fakeUseCase{}, nopLogger{}), `{}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, post(NewHandler(&fakeUseCase{}, nopLogger{}), `not json`, true).Code)

	rec := post(NewHandler(&fakeUseCase{err: bookingConversation.ErrInternal}, nopLogger{}), `{"text":"hi"}`, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
