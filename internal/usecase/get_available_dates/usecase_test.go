package get_available_dates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type stubCatalog struct{}

func (stubCatalog) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	if id != 1 {
		return nil, domain.ErrNotFound
	}
	return &domain.Provider{ID: 1, Active: true}, nil
}

func (stubCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if id != 10 {
		return nil, domain.ErrNotFound
	}
	return &domain.Service{ID: 10, ProviderID: 1, Name: "Стрижка", Price: 1000, DurationMinutes: 60, Active: true}, nil
}

type stubSchedule struct {
	daysOff []*domain.DayOff
}

func (stubSchedule) ListTemplates(context.Context, int64) ([]*domain.AvailabilityTemplate, error) {
	return []*domain.AvailabilityTemplate{{
		ProviderID: 1, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "18:00", SlotDurationMinutes: 60,
	}}, nil
}

func (s stubSchedule) ListDaysOff(context.Context, int64, time.Time, time.Time) ([]*domain.DayOff, error) {
	return s.daysOff, nil
}

type stubAppointments struct {
	items []*domain.Appointment
	got   domain.AppointmentsFilter
}

func (s *stubAppointments) List(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	s.got = filter
	return s.items, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	monday     = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	nextMonday = monday.AddDate(0, 0, 7)
)

func newUseCase(now time.Time, schedule stubSchedule, appts *stubAppointments) *UseCase {
	uc := NewUseCase(stubCatalog{}, schedule, appts, 8, 0, time.UTC, nopLogger{})
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func formatDates(dates []time.Time) []string {
	result := make([]string, len(dates))
	for i, d := range dates {
		result[i] = d.Format(domain.DateFormat)
	}
	return result
}

func TestExecute_WorkingDaysWithinHorizon(t *testing.T) {
	appts := &stubAppointments{}
	uc := newUseCase(monday.Add(8*time.Hour), stubSchedule{}, appts)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-13", "2025-10-20"}, formatDates(resp.Dates))
	require.NotNil(t, appts.got.StartDate)
	assert.True(t, appts.got.StartDate.Equal(monday))
	assert.True(t, appts.got.EndDate.Equal(nextMonday))
}

func TestExecute_TodayWithoutFreeSlotsSkipped(t *testing.T) {
	uc := newUseCase(monday.Add(17*time.Hour+30*time.Minute), stubSchedule{}, &stubAppointments{})

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-20"}, formatDates(resp.Dates))
}

func TestExecute_FullyBookedDateSkipped(t *testing.T) {
	appts := &stubAppointments{items: []*domain.Appointment{{
		ProviderID: 1, AppointmentDate: monday, StartTime: "17:00", EndTime: "18:00", Status: domain.StatusPending,
	}}}
	uc := newUseCase(monday.Add(16*time.Hour+5*time.Minute), stubSchedule{}, appts)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-20"}, formatDates(resp.Dates))
}

func TestExecute_CompletedAppointmentStillBooksDate(t *testing.T) {
	appts := &stubAppointments{items: []*domain.Appointment{{
		ProviderID: 1, AppointmentDate: monday, StartTime: "17:00", EndTime: "18:00", Status: domain.StatusCompleted,
	}}}
	uc := newUseCase(monday.Add(16*time.Hour+5*time.Minute), stubSchedule{}, appts)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-20"}, formatDates(resp.Dates))
	assert.Equal(t, domain.OccupyingStatuses, appts.got.Statuses)
}

func TestExecute_CancelledAppointmentFreesDate(t *testing.T) {
	appts := &stubAppointments{items: []*domain.Appointment{{
		ProviderID: 1, AppointmentDate: monday, StartTime: "17:00", EndTime: "18:00", Status: domain.StatusCancelled,
	}}}
	uc := newUseCase(monday.Add(16*time.Hour+5*time.Minute), stubSchedule{}, appts)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-13", "2025-10-20"}, formatDates(resp.Dates))
}

func TestExecute_DayOffSkipped(t *testing.T) {
	schedule := stubSchedule{daysOff: []*domain.DayOff{{ProviderID: 1, Date: nextMonday}}}
	uc := newUseCase(monday.Add(8*time.Hour), schedule, &stubAppointments{})

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-13"}, formatDates(resp.Dates))
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(monday, stubSchedule{}, &stubAppointments{})

	_, err := uc.Execute(context.Background(), &Request{ProviderID: 0, ServiceID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ProviderID: 7, ServiceID: 10})
	assert.ErrorIs(t, err, ErrProviderNotFound)

	_, err = uc.Execute(context.Background(), &Request{ProviderID: 1, ServiceID: 99})
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
