package booking_conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/finalize_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_dates"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/workflow"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// 2030-03-04 - понедельник
var bookingDay = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

type memSessions struct {
	mu      sync.Mutex
	items   map[int64]workflow.Session
	loadErr error
}

func newMemSessions() *memSessions {
	return &memSessions{items: map[int64]workflow.Session{}}
}

func (m *memSessions) Load(_ context.Context, clientID int64) (workflow.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return workflow.Session{}, m.loadErr
	}
	s, ok := m.items[clientID]
	if !ok {
		return workflow.Session{}, fmt.Errorf("load: %w", domain.ErrNotFound)
	}
	return s, nil
}

func (m *memSessions) Save(_ context.Context, s workflow.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.ClientID] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, clientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, clientID)
	return nil
}

func (m *memSessions) get(clientID int64) (workflow.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[clientID]
	return s, ok
}

type memCatalog struct {
	providers map[int64]*domain.Provider
	services  map[int64]*domain.Service
	clients   map[int64]*domain.Client
}

func (c *memCatalog) UpsertClient(_ context.Context, client *domain.Client) (*domain.Client, error) {
	c.clients[client.ID] = client
	return client, nil
}

func (c *memCatalog) GetClient(_ context.Context, id int64) (*domain.Client, error) {
	client, ok := c.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func (c *memCatalog) ListActiveProviders(context.Context) ([]*domain.Provider, error) {
	var result []*domain.Provider
	for _, id := range []int64{1, 2} {
		if p, ok := c.providers[id]; ok && p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

func (c *memCatalog) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	p, ok := c.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (c *memCatalog) ListActiveServices(_ context.Context, providerID int64) ([]*domain.Service, error) {
	var result []*domain.Service
	for _, id := range []int64{5, 6} {
		if s, ok := c.services[id]; ok && s.Active && s.ProviderID == providerID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (c *memCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := c.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

type memSchedule struct{}

func (memSchedule) ListTemplates(context.Context, int64) ([]*domain.AvailabilityTemplate, error) {
	return []*domain.AvailabilityTemplate{{
		ProviderID: 1, DayOfWeek: time.Monday, StartTime: "09:30", EndTime: "18:00",
		BreakStart: ptr.Ptr(types.TimeString("13:00")), BreakEnd: ptr.Ptr(types.TimeString("14:00")),
		SlotDurationMinutes: 30,
	}}, nil
}

func (memSchedule) ListDaysOff(context.Context, int64, time.Time, time.Time) ([]*domain.DayOff, error) {
	return nil, nil
}

// memLedger реестр записей с проверкой пересечения при вставке
type memLedger struct {
	mu    sync.Mutex
	items []*domain.Appointment
}

func (l *memLedger) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.items {
		if a.OccupiesSlot() && a.ProviderID == appt.ProviderID && domain.SameDate(a.AppointmentDate, appt.AppointmentDate) &&
			domain.Overlaps(a.StartTime, a.EndTime, appt.StartTime, appt.EndTime) {
			return nil, fmt.Errorf("insert: %w", domain.ErrConflict)
		}
	}
	created := *appt
	created.ID = int64(len(l.items) + 1)
	l.items = append(l.items, &created)
	return &created, nil
}

func (l *memLedger) ListOccupyingByProviderAndDate(_ context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []*domain.Appointment
	for _, a := range l.items {
		if a.OccupiesSlot() && a.ProviderID == providerID && domain.SameDate(a.AppointmentDate, date) {
			result = append(result, a)
		}
	}
	return result, nil
}

type memOutbox struct {
	sent []domain.Notification
	err  error
}

func (o *memOutbox) Send(_ context.Context, n domain.Notification) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, n)
	return nil
}

type fixedDates struct{}

func (fixedDates) Execute(_ context.Context, req *get_available_dates.Request) (*get_available_dates.Response, error) {
	return &get_available_dates.Response{ProviderID: req.ProviderID, ServiceID: req.ServiceID, Dates: []time.Time{bookingDay}}, nil
}

type passThroughTx struct{}

func (passThroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopMetrics struct{}

func (nopMetrics) IncConversationEvent(string)   {}
func (nopMetrics) IncBookingFinalization(string) {}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fixture struct {
	sessions *memSessions
	catalog  *memCatalog
	ledger   *memLedger
	outbox   *memOutbox
	uc       *UseCase
}

const clientID int64 = 77

func newFixture() *fixture {
	f := &fixture{
		sessions: newMemSessions(),
		catalog: &memCatalog{
			providers: map[int64]*domain.Provider{
				1: {ID: 1, DisplayName: "Анна", Active: true},
				2: {ID: 2, DisplayName: "Олег", Active: true},
			},
			services: map[int64]*domain.Service{
				5: {ID: 5, ProviderID: 1, Name: "Окрашивание", Price: 3000, DurationMinutes: 45, Active: true},
				6: {ID: 6, ProviderID: 1, Name: "Стрижка", Price: 1500, DurationMinutes: 30, Active: true},
			},
			clients: map[int64]*domain.Client{},
		},
		ledger: &memLedger{},
		outbox: &memOutbox{},
	}

	slots := get_available_slots.NewUseCase(f.catalog, memSchedule{}, f.ledger, 0, time.UTC, nopLogger{})
	finalizer := finalize_booking.NewUseCase(slots, f.ledger, f.catalog, f.outbox, passThroughTx{}, nopMetrics{}, nopLogger{})

	f.uc = NewUseCase(f.sessions, f.catalog, fixedDates{}, slots, finalizer, 30*time.Minute, nopMetrics{}, nopLogger{})
	f.uc.timeProvider = fixedTime{now: time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)}
	return f
}

func (f *fixture) start(t *testing.T) *Prompt {
	t.Helper()
	p, err := f.uc.Start(context.Background(), &StartRequest{ClientID: clientID, DisplayName: "Мария", Contact: ptr.Ptr("+7 (999) 000-11-22")})
	require.NoError(t, err)
	return p
}

func (f *fixture) press(t *testing.T, token string) *Prompt {
	t.Helper()
	p, err := f.uc.Handle(context.Background(), &Input{ClientID: clientID, Token: token})
	require.NoError(t, err)
	return p
}

func (f *fixture) say(t *testing.T, text string) *Prompt {
	t.Helper()
	p, err := f.uc.Handle(context.Background(), &Input{ClientID: clientID, Text: text})
	require.NoError(t, err)
	return p
}

func tokens(p *Prompt) []string {
	result := make([]string, len(p.Options))
	for i, o := range p.Options {
		result[i] = o.Token
	}
	return result
}

func TestConversation_FullPathCreatesPendingAppointment(t *testing.T) {
	f := newFixture()

	p := f.start(t)
	assert.Equal(t, workflow.StepSelectProvider, p.Step)
	assert.Equal(t, []string{"p:1", "p:2", "cancel"}, tokens(p))
	assert.Equal(t, "+79990001122", *f.catalog.clients[clientID].Contact)

	p = f.press(t, "p:1")
	assert.Equal(t, workflow.StepSelectService, p.Step)
	assert.Equal(t, []string{"s:5", "s:6", "back", "cancel"}, tokens(p))

	p = f.press(t, "s:5")
	assert.Equal(t, workflow.StepSelectDate, p.Step)
	assert.Contains(t, tokens(p), "d:2030-03-04")

	p = f.press(t, "d:2030-03-04")
	assert.Equal(t, workflow.StepSelectTime, p.Step)
	assert.Contains(t, tokens(p), "t:11:00")

	p = f.press(t, "t:11:00")
	assert.Equal(t, workflow.StepConfirm, p.Step)
	assert.Contains(t, p.Text, "11:00-11:45")
	assert.Equal(t, []string{"confirm", "comment", "back", "cancel"}, tokens(p))

	p = f.press(t, "confirm")
	assert.True(t, p.Finished)
	assert.Equal(t, workflow.StepFinalized, p.Step)
	require.NotNil(t, p.AppointmentID)

	require.Len(t, f.ledger.items, 1)
	appt := f.ledger.items[0]
	assert.Equal(t, *p.AppointmentID, appt.ID)
	assert.Equal(t, int64(1), appt.ProviderID)
	assert.Equal(t, clientID, appt.ClientID)
	assert.Equal(t, int64(5), appt.ServiceID)
	assert.True(t, appt.AppointmentDate.Equal(bookingDay))
	assert.Equal(t, types.TimeString("11:00"), appt.StartTime)
	assert.Equal(t, types.TimeString("11:45"), appt.EndTime)
	assert.Equal(t, domain.StatusPending, appt.Status)
	assert.Nil(t, appt.Comment)

	require.Len(t, f.outbox.sent, 1)
	n := f.outbox.sent[0]
	assert.Equal(t, domain.RoleProvider, n.RecipientRole)
	assert.Equal(t, []string{
		domain.ActionToken(domain.ActionAccept, appt.ID),
		domain.ActionToken(domain.ActionReject, appt.ID),
	}, []string{n.Actions[0].Token, n.Actions[1].Token})

	_, ok := f.sessions.get(clientID)
	assert.False(t, ok)
}

func TestConversation_CommentIsAttached(t *testing.T) {
	f := newFixture()
	f.start(t)
	for _, token := range []string{"p:1", "s:6", "d:2030-03-04", "t:10:00", "comment"} {
		f.press(t, token)
	}

	p := f.say(t, "   ")
	assert.Equal(t, workflow.StepComment, p.Step)
	assert.Contains(t, p.Text, "Комментарий должен содержать")

	p = f.say(t, "Буду с ребенком")
	require.True(t, p.Finished)
	require.Len(t, f.ledger.items, 1)
	assert.Equal(t, "Буду с ребенком", *f.ledger.items[0].Comment)
}

func TestConversation_SlotTakenBeforeConfirm(t *testing.T) {
	f := newFixture()
	f.start(t)
	for _, token := range []string{"p:1", "s:5", "d:2030-03-04", "t:11:00"} {
		f.press(t, token)
	}

	// другой клиент успел занять время
	_, err := f.ledger.Create(context.Background(), &domain.Appointment{
		ProviderID: 1, ClientID: 2, ServiceID: 5, AppointmentDate: bookingDay,
		StartTime: "11:00", EndTime: "11:45", Status: domain.StatusPending,
	})
	require.NoError(t, err)

	p := f.press(t, "confirm")

	assert.False(t, p.Finished)
	assert.Equal(t, workflow.StepSelectTime, p.Step)
	assert.Contains(t, p.Text, noticeSlotTaken)
	assert.NotContains(t, tokens(p), "t:11:00")

	sess, ok := f.sessions.get(clientID)
	require.True(t, ok)
	assert.Equal(t, workflow.StepSelectTime, sess.State.Step)
	assert.True(t, sess.State.Draft.Time.IsZero())
	assert.Len(t, f.ledger.items, 1)
}

func TestConversation_BackAndCancel(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.press(t, "p:1")
	f.press(t, "s:5")

	p := f.press(t, "back")
	assert.Equal(t, workflow.StepSelectService, p.Step)
	sess, _ := f.sessions.get(clientID)
	assert.Equal(t, int64(5), sess.State.Draft.ServiceID)

	p = f.press(t, "cancel")
	assert.True(t, p.Finished)
	assert.Equal(t, workflow.StepAborted, p.Step)
	assert.Empty(t, f.ledger.items)
	assert.Empty(t, f.outbox.sent)
	_, ok := f.sessions.get(clientID)
	assert.False(t, ok)
}

func TestConversation_UnknownInputReprompts(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.press(t, "p:1")

	p := f.press(t, "t:10:00")
	assert.Equal(t, workflow.StepSelectService, p.Step)

	p = f.say(t, "хочу к Анне")
	assert.Equal(t, workflow.StepSelectService, p.Step)
	assert.Equal(t, []string{"s:5", "s:6", "back", "cancel"}, tokens(p))
}

func TestConversation_DeactivatedServiceRejected(t *testing.T) {
	f := newFixture()
	f.start(t)
	for _, token := range []string{"p:1", "s:5", "d:2030-03-04"} {
		f.press(t, token)
	}
	f.catalog.services[5].Active = false

	p := f.press(t, "t:11:00")

	assert.Equal(t, workflow.StepSelectService, p.Step)
	assert.Contains(t, p.Text, noticeUnavailable)
	assert.Equal(t, []string{"s:6", "back", "cancel"}, tokens(p))
}

func TestConversation_NoSessionRestarts(t *testing.T) {
	f := newFixture()

	p := f.press(t, "confirm")

	assert.Equal(t, workflow.StepSelectProvider, p.Step)
	assert.Contains(t, p.Text, textRestarted)
	sess, ok := f.sessions.get(clientID)
	require.True(t, ok)
	assert.Equal(t, workflow.Initial(), sess.State)
}

func TestConversation_ExpiredDraftRestarts(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.press(t, "p:1")

	f.uc.timeProvider = fixedTime{now: time.Date(2030, 3, 1, 13, 0, 0, 0, time.UTC)}
	p := f.press(t, "s:5")

	assert.Equal(t, workflow.StepSelectProvider, p.Step)
	assert.Contains(t, p.Text, textRestarted)
}

func TestConversation_PersistenceFailureAborts(t *testing.T) {
	f := newFixture()
	f.start(t)
	for _, token := range []string{"p:1", "s:5", "d:2030-03-04", "t:11:00"} {
		f.press(t, token)
	}
	f.outbox.err = errors.New("connection reset by peer")

	p := f.press(t, "confirm")

	assert.True(t, p.Finished)
	assert.Equal(t, textFailure, p.Text)
	_, ok := f.sessions.get(clientID)
	assert.False(t, ok)
}

func TestConversation_SessionLoadFailure(t *testing.T) {
	f := newFixture()
	f.sessions.loadErr = fmt.Errorf("redis: %w", domain.ErrPersistence)

	_, err := f.uc.Handle(context.Background(), &Input{ClientID: clientID, Token: "p:1"})

	assert.ErrorIs(t, err, ErrInternal)
}

func TestStart_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Start(context.Background(), &StartRequest{ClientID: clientID, DisplayName: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Start(context.Background(), &StartRequest{ClientID: clientID, DisplayName: "Мария", Contact: ptr.Ptr("call me")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Start(context.Background(), &StartRequest{ClientID: 0, DisplayName: "Мария"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
