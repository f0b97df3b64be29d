package appointments

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
	appointmentRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BookingEngine/internal/service/appointments/models"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

const (
	providerID = int64(1)
	clientID   = int64(100)
	otherID    = int64(999)
)

// 2030-03-04 - понедельник
var visitDay = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

type memLedger struct {
	mu        sync.Mutex
	items     map[int64]*domain.Appointment
	updateErr error
}

func newLedger(appts ...*domain.Appointment) *memLedger {
	l := &memLedger{items: map[int64]*domain.Appointment{}}
	for _, a := range appts {
		l.items[a.ID] = a
	}
	return l
}

func (l *memLedger) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.items[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (l *memLedger) List(_ context.Context, f domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []*domain.Appointment
	for _, a := range l.items {
		if f.ProviderID != nil && a.ProviderID != *f.ProviderID {
			continue
		}
		if f.ClientID != nil && a.ClientID != *f.ClientID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.Status == nil && len(f.Statuses) > 0 && !hasStatus(f.Statuses, a.Status) {
			continue
		}
		if f.Status == nil && len(f.Statuses) == 0 && !f.IncludeInactive && !a.IsActive() {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	return result, nil
}

func hasStatus(statuses []domain.AppointmentStatus, s domain.AppointmentStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (l *memLedger) ListOccupyingByProviderAndDate(ctx context.Context, provider int64, _ time.Time) ([]*domain.Appointment, error) {
	return l.List(ctx, domain.AppointmentsFilter{ProviderID: &provider, Statuses: domain.OccupyingStatuses})
}

func (l *memLedger) UpdateStatus(_ context.Context, upd appointmentRepo.StatusUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updateErr != nil {
		return l.updateErr
	}
	a, ok := l.items[upd.ID]
	if !ok || a.Status != upd.From {
		return appointmentRepo.ErrStatusChanged
	}
	a.Status = upd.To
	a.CancellationReason = upd.CancellationReason
	a.CancelledBy = upd.CancelledBy
	return nil
}

func (l *memLedger) SetReview(_ context.Context, id int64, rating int, review *string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.items[id]
	if !ok || a.Status != domain.StatusCompleted || a.Rating != nil {
		return appointmentRepo.ErrReviewNotAllowed
	}
	a.Rating = &rating
	a.Review = review
	return nil
}

func (l *memLedger) status(id int64) domain.AppointmentStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[id].Status
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

// fakeTx откатывает уведомления при ошибке, как транзакция
type fakeTx struct {
	outbox *memOutbox
}

func (t fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	before := len(t.outbox.sent)
	if err := fn(ctx); err != nil {
		t.outbox.sent = t.outbox.sent[:before]
		return err
	}
	return nil
}

type fakeMetrics struct {
	transitions []string
}

func (m *fakeMetrics) IncAppointmentTransition(action, result string) {
	m.transitions = append(m.transitions, action+"/"+result)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	ledger  *memLedger
	outbox  *memOutbox
	metrics *fakeMetrics
	svc     *Service
}

func newFixture(appts ...*domain.Appointment) *fixture {
	f := &fixture{ledger: newLedger(appts...), outbox: &memOutbox{}, metrics: &fakeMetrics{}}
	f.svc = NewService(f.ledger, f.outbox, fakeTx{outbox: f.outbox}, f.metrics, nopLogger{})
	return f
}

func appointmentIn(id int64, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		ProviderID:      providerID,
		ClientID:        clientID,
		ServiceID:       5,
		AppointmentDate: visitDay,
		StartTime:       "11:00",
		EndTime:         "11:45",
		Status:          status,
		ServiceName:     "Стрижка",
		ServicePrice:    1500,
	}
}

// slotsFor движок доступности поверх того же реестра
func slotsFor(ledger *memLedger) *get_available_slots.UseCase {
	return get_available_slots.NewUseCase(catalogStub{}, scheduleStub{}, ledger, 0, time.UTC, nopLogger{})
}

type catalogStub struct{}

func (catalogStub) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	return &domain.Provider{ID: id, DisplayName: "Анна", Active: true}, nil
}

func (catalogStub) GetService(_ context.Context, id int64) (*domain.Service, error) {
	return &domain.Service{ID: id, ProviderID: providerID, Name: "Стрижка", Price: 1500, DurationMinutes: 45, Active: true}, nil
}

type scheduleStub struct{}

func (scheduleStub) ListTemplates(context.Context, int64) ([]*domain.AvailabilityTemplate, error) {
	return []*domain.AvailabilityTemplate{{
		ProviderID: providerID, DayOfWeek: time.Monday, StartTime: "09:30", EndTime: "18:00",
		BreakStart: ptr.Ptr(types.TimeString("13:00")), BreakEnd: ptr.Ptr(types.TimeString("14:00")),
		SlotDurationMinutes: 30,
	}}, nil
}

func (scheduleStub) ListDaysOff(context.Context, int64, time.Time, time.Time) ([]*domain.DayOff, error) {
	return nil, nil
}

func offered(t *testing.T, ledger *memLedger, start types.TimeString) bool {
	t.Helper()
	resp, err := slotsFor(ledger).Execute(context.Background(), &get_available_slots.Request{
		ProviderID: providerID, ServiceID: 5, Date: visitDay,
	})
	require.NoError(t, err)
	for _, s := range resp.Slots {
		if s.StartTime == start {
			return true
		}
	}
	return false
}

func TestService_RejectFreesSlotAndNotifiesClient(t *testing.T) {
	f := newFixture(appointmentIn(7, domain.StatusPending))
	require.False(t, offered(t, f.ledger, "11:00"))

	resp, err := f.svc.Reject(context.Background(), 7, providerID, ptr.Ptr("  заболел  "))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, "заболел", *resp.CancellationReason)
	assert.Equal(t, string(domain.RoleProvider), *resp.CancelledBy)
	assert.Equal(t, domain.StatusCancelled, f.ledger.status(7))

	require.Len(t, f.outbox.sent, 1)
	n := f.outbox.sent[0]
	assert.Equal(t, clientID, n.RecipientID)
	assert.Equal(t, domain.RoleClient, n.RecipientRole)
	assert.Equal(t, domain.NotificationBookingRejected, n.Kind)
	assert.Contains(t, n.Message, "Причина: заболел")

	assert.True(t, offered(t, f.ledger, "11:00"))
	assert.Equal(t, []string{"reject/ok"}, f.metrics.transitions)
}

func TestService_AcceptThenComplete(t *testing.T) {
	f := newFixture(appointmentIn(7, domain.StatusPending))
	ctx := context.Background()

	resp, err := f.svc.Accept(ctx, 7, providerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.False(t, offered(t, f.ledger, "11:00"))

	resp, err = f.svc.Complete(ctx, 7, providerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	require.Len(t, f.outbox.sent, 2)
	confirmed := f.outbox.sent[0]
	assert.Equal(t, domain.NotificationBookingConfirmed, confirmed.Kind)
	assert.Equal(t, []domain.NotificationAction{{Label: "Отменить запись", Token: "appt:cancel:7"}}, confirmed.Actions)

	completed := f.outbox.sent[1]
	assert.Equal(t, domain.NotificationBookingCompleted, completed.Kind)
	require.Len(t, completed.Actions, 5)
	assert.Equal(t, "review:7:1", completed.Actions[0].Token)
	assert.Equal(t, "review:7:5", completed.Actions[4].Token)
}

func TestService_ClientCancelNotifiesProvider(t *testing.T) {
	f := newFixture(appointmentIn(7, domain.StatusConfirmed))

	resp, err := f.svc.Cancel(context.Background(), 7, domain.Actor{Role: domain.RoleClient, ID: clientID}, nil)

	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleClient), *resp.CancelledBy)
	assert.Nil(t, resp.CancellationReason)
	require.Len(t, f.outbox.sent, 1)
	assert.Equal(t, providerID, f.outbox.sent[0].RecipientID)
	assert.Equal(t, domain.RoleProvider, f.outbox.sent[0].RecipientRole)
	assert.Equal(t, domain.NotificationBookingCancelled, f.outbox.sent[0].Kind)
}

func TestService_TerminalStatusesAreFinal(t *testing.T) {
	ctx := context.Background()
	provider := domain.Actor{Role: domain.RoleProvider, ID: providerID}

	for _, status := range []domain.AppointmentStatus{domain.StatusCancelled, domain.StatusCompleted} {
		f := newFixture(appointmentIn(7, status))

		_, errAccept := f.svc.Accept(ctx, 7, providerID)
		_, errReject := f.svc.Reject(ctx, 7, providerID, nil)
		_, errCancel := f.svc.Cancel(ctx, 7, provider, nil)
		_, errComplete := f.svc.Complete(ctx, 7, providerID)

		for _, err := range []error{errAccept, errReject, errCancel, errComplete} {
			assert.ErrorIs(t, err, ErrInvalidTransition, string(status))
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, string(status))
		}
		assert.Equal(t, status, f.ledger.status(7))
		assert.Empty(t, f.outbox.sent)
	}
}

func TestService_InvalidTransitionsFromActiveStatuses(t *testing.T) {
	ctx := context.Background()

	f := newFixture(appointmentIn(7, domain.StatusPending))
	_, err := f.svc.Complete(ctx, 7, providerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f = newFixture(appointmentIn(7, domain.StatusConfirmed))
	_, err = f.svc.Accept(ctx, 7, providerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, []string{"accept/invalid_transition"}, f.metrics.transitions)
}

func TestService_AccessDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(appointmentIn(7, domain.StatusPending))

	_, err := f.svc.Accept(ctx, 7, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.Cancel(ctx, 7, domain.Actor{Role: domain.RoleClient, ID: otherID}, nil)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// подтверждение доступно только мастеру
	_, err = f.svc.ApplyToken(ctx, "appt:accept:7", domain.Actor{Role: domain.RoleClient, ID: clientID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(ctx, 7, domain.Actor{Role: domain.RoleProvider, ID: otherID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Equal(t, domain.StatusPending, f.ledger.status(7))
	assert.Empty(t, f.outbox.sent)
}

func TestService_NotFoundAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Accept(ctx, 42, providerID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Accept(ctx, 0, providerID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	long := string(make([]rune, domain.MaxCancellationReasonLen+1))
	_, err = f.svc.Reject(ctx, 42, providerID, &long)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ApplyToken(ctx, "confirm", domain.Actor{Role: domain.RoleProvider, ID: providerID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_NotificationFailureRollsBack(t *testing.T) {
	f := newFixture(appointmentIn(7, domain.StatusPending))
	f.outbox.err = errors.New("outbox down")

	_, err := f.svc.Accept(context.Background(), 7, providerID)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, []string{"accept/error"}, f.metrics.transitions)
}

func TestService_RepositoryFailure(t *testing.T) {
	f := newFixture(appointmentIn(7, domain.StatusPending))
	f.ledger.updateErr = fmt.Errorf("update: %w", appointmentRepo.ErrExecQuery)

	_, err := f.svc.Accept(context.Background(), 7, providerID)

	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.outbox.sent)
}

func TestService_ApplyTokenDispatch(t *testing.T) {
	ctx := context.Background()
	provider := domain.Actor{Role: domain.RoleProvider, ID: providerID}
	client := domain.Actor{Role: domain.RoleClient, ID: clientID}
	f := newFixture(appointmentIn(7, domain.StatusPending), appointmentIn(8, domain.StatusPending))

	resp, err := f.svc.ApplyToken(ctx, "appt:accept:7", provider)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	resp, err = f.svc.ApplyToken(ctx, "appt:complete:7", provider)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	resp, err = f.svc.ApplyToken(ctx, "review:7:4", client)
	require.NoError(t, err)
	assert.Equal(t, 4, *resp.Rating)

	resp, err = f.svc.ApplyToken(ctx, "appt:cancel:8", client)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)

	_, err = f.svc.ApplyToken(ctx, "review:8:5", provider)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_LeaveReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(appointmentIn(7, domain.StatusCompleted), appointmentIn(8, domain.StatusConfirmed))

	resp, err := f.svc.LeaveReview(ctx, 7, clientID, 5, ptr.Ptr(" отлично "))
	require.NoError(t, err)
	assert.Equal(t, 5, *resp.Rating)
	assert.Equal(t, "отлично", *resp.Review)

	_, err = f.svc.LeaveReview(ctx, 7, clientID, 4, nil)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.LeaveReview(ctx, 8, clientID, 4, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.LeaveReview(ctx, 7, otherID, 4, nil)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.LeaveReview(ctx, 7, clientID, 6, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, []string{"review/ok", "review/invalid_transition", "review/invalid_transition", "review/denied"}, f.metrics.transitions)
}

func TestService_Lists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(appointmentIn(7, domain.StatusPending), appointmentIn(8, domain.StatusCancelled))

	active, err := f.svc.ListForClient(ctx, clientID, true)
	require.NoError(t, err)
	require.Len(t, active.Appointments, 1)
	assert.Equal(t, int64(7), active.Appointments[0].ID)

	all, err := f.svc.ListForClient(ctx, clientID, false)
	require.NoError(t, err)
	assert.Len(t, all.Appointments, 2)

	cancelled := string(domain.StatusCancelled)
	list, err := f.svc.ListForProvider(ctx, &models.ProviderAppointmentsRequest{ProviderID: providerID, Status: &cancelled}, providerID)
	require.NoError(t, err)
	require.Len(t, list.Appointments, 1)
	assert.Equal(t, int64(8), list.Appointments[0].ID)

	_, err = f.svc.ListForProvider(ctx, &models.ProviderAppointmentsRequest{ProviderID: providerID}, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	bad := "done"
	_, err = f.svc.ListForProvider(ctx, &models.ProviderAppointmentsRequest{ProviderID: providerID, Status: &bad}, providerID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	empty, err := f.svc.ListForClient(ctx, otherID, true)
	require.NoError(t, err)
	assert.NotNil(t, empty.Appointments)
	assert.Empty(t, empty.Appointments)
}
