package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type fakeCatalog struct {
	providers map[int64]*domain.Provider
	services  map[int64]*domain.Service
	err       error
}

func (f *fakeCatalog) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

type fakeSchedule struct {
	templates []*domain.AvailabilityTemplate
	daysOff   []*domain.DayOff
}

func (f *fakeSchedule) ListTemplates(context.Context, int64) ([]*domain.AvailabilityTemplate, error) {
	return f.templates, nil
}

func (f *fakeSchedule) ListDaysOff(context.Context, int64, time.Time, time.Time) ([]*domain.DayOff, error) {
	return f.daysOff, nil
}

type fakeAppointments struct {
	items []*domain.Appointment
	err   error
	calls int
}

func (f *fakeAppointments) ListOccupyingByProviderAndDate(_ context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var result []*domain.Appointment
	for _, a := range f.items {
		if a.ProviderID == providerID && domain.SameDate(a.AppointmentDate, date) && a.OccupiesSlot() {
			result = append(result, a)
		}
	}
	return result, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	catalog      *fakeCatalog
	schedule     *fakeSchedule
	appointments *fakeAppointments
	uc           *UseCase
}

func newFixture(now time.Time, minNotice int) *fixture {
	f := &fixture{
		catalog: &fakeCatalog{
			providers: map[int64]*domain.Provider{
				1: {ID: 1, DisplayName: "Анна", Active: true},
				2: {ID: 2, DisplayName: "Ушла", Active: false},
			},
			services: map[int64]*domain.Service{
				10: {ID: 10, ProviderID: 1, Name: "Стрижка", Price: 1500, DurationMinutes: 30, Active: true},
				11: {ID: 11, ProviderID: 1, Name: "Окрашивание", Price: 4000, DurationMinutes: 45, Active: true},
				20: {ID: 20, ProviderID: 2, Name: "Чужая", Price: 1000, DurationMinutes: 30, Active: true},
			},
		},
		schedule:     &fakeSchedule{templates: []*domain.AvailabilityTemplate{mondayTemplate()}},
		appointments: &fakeAppointments{},
	}
	f.uc = NewUseCase(f.catalog, f.schedule, f.appointments, minNotice, time.UTC, nopLogger{})
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

var weekBefore = monday.AddDate(0, 0, -7)

func TestExecute_ExcludesBookedInterval(t *testing.T) {
	f := newFixture(weekBefore, 0)
	f.appointments.items = []*domain.Appointment{{
		ID: 1, ProviderID: 1, AppointmentDate: monday,
		StartTime: "10:00", EndTime: "10:30", Status: domain.StatusConfirmed,
	}}

	resp, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10, Date: monday})
	require.NoError(t, err)

	free := startTimes(resp.Slots)
	assert.NotContains(t, free, "10:00")
	assert.Contains(t, free, "09:30")
	assert.Contains(t, free, "10:30")
	assert.Len(t, free, 15)
	assert.Equal(t, 30, resp.DurationMinutes)
}

func TestExecute_SlotLengthFollowsServiceDuration(t *testing.T) {
	f := newFixture(weekBefore, 0)

	resp, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 11, Date: monday})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.Equal(t, 45, s.EndTime.Minutes()-s.StartTime.Minutes())
	}
	assert.Contains(t, startTimes(resp.Slots), "11:15")
}

func TestExecute_CancelledAppointmentFreesSlot(t *testing.T) {
	f := newFixture(weekBefore, 0)
	f.appointments.items = []*domain.Appointment{{
		ID: 1, ProviderID: 1, AppointmentDate: monday,
		StartTime: "11:15", EndTime: "12:00", Status: domain.StatusCancelled,
	}}

	resp, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 11, Date: monday})
	require.NoError(t, err)

	assert.Contains(t, startTimes(resp.Slots), "11:15")
}

func TestExecute_CompletedAppointmentKeepsSlotTaken(t *testing.T) {
	f := newFixture(weekBefore, 0)
	f.appointments.items = []*domain.Appointment{{
		ID: 1, ProviderID: 1, AppointmentDate: monday,
		StartTime: "11:15", EndTime: "12:00", Status: domain.StatusCompleted,
	}}

	resp, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 11, Date: monday})
	require.NoError(t, err)

	free := startTimes(resp.Slots)
	assert.NotContains(t, free, "11:15")
	assert.Contains(t, free, "10:30")
}

func TestExecute_DayOff(t *testing.T) {
	f := newFixture(weekBefore, 0)
	f.schedule.daysOff = []*domain.DayOff{{ProviderID: 1, Date: monday}}

	resp, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10, Date: monday})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.Zero(t, f.appointments.calls)
}

func TestExecute_MinNoticeOnToday(t *testing.T) {
	now := time.Date(2025, 10, 13, 9, 40, 0, 0, time.UTC)
	f := newFixture(now, 60)

	resp, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10, Date: monday})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, "11:00", resp.Slots[0].StartTime.String())
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
		class   error
	}{
		{"invalid provider", &Request{ProviderID: 0, ServiceID: 10, Date: monday}, ErrInvalidInput, domain.ErrValidation},
		{"missing date", &Request{ProviderID: 1, ServiceID: 10}, ErrInvalidInput, domain.ErrValidation},
		{"date in past", &Request{ProviderID: 1, ServiceID: 10, Date: weekBefore.AddDate(0, 0, -1)}, ErrDateInPast, domain.ErrValidation},
		{"unknown provider", &Request{ProviderID: 99, ServiceID: 10, Date: monday}, ErrProviderNotFound, domain.ErrNotFound},
		{"inactive provider", &Request{ProviderID: 2, ServiceID: 20, Date: monday}, ErrProviderNotFound, domain.ErrNotFound},
		{"unknown service", &Request{ProviderID: 1, ServiceID: 99, Date: monday}, ErrServiceNotFound, domain.ErrNotFound},
		{"foreign service", &Request{ProviderID: 1, ServiceID: 20, Date: monday}, ErrServiceNotFound, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(weekBefore, 0)

			_, err := f.uc.Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.class)
		})
	}
}

func TestExecute_RepositoryFailure(t *testing.T) {
	f := newFixture(weekBefore, 0)
	f.appointments.err = errors.New("connection reset")

	_, err := f.uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10, Date: monday})

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
