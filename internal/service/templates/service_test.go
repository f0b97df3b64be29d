package templates

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

const providerID = int64(1)

type memSchedule struct {
	templates map[time.Weekday]*domain.AvailabilityTemplate
	daysOff   map[string]*domain.DayOff
	nextID    int64
	err       error
}

func newMemSchedule() *memSchedule {
	return &memSchedule{
		templates: map[time.Weekday]*domain.AvailabilityTemplate{},
		daysOff:   map[string]*domain.DayOff{},
	}
}

func (m *memSchedule) UpsertTemplate(_ context.Context, tpl *domain.AvailabilityTemplate) (*domain.AvailabilityTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if existing, ok := m.templates[tpl.DayOfWeek]; ok {
		tpl.ID = existing.ID
	} else {
		m.nextID++
		tpl.ID = m.nextID
	}
	m.templates[tpl.DayOfWeek] = tpl
	return tpl, nil
}

func (m *memSchedule) ListTemplates(context.Context, int64) ([]*domain.AvailabilityTemplate, error) {
	var result []*domain.AvailabilityTemplate
	for day := time.Sunday; day <= time.Saturday; day++ {
		if t, ok := m.templates[day]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *memSchedule) DeleteTemplate(_ context.Context, _ int64, day time.Weekday) error {
	if _, ok := m.templates[day]; !ok {
		return scheduleRepo.ErrTemplateNotFound
	}
	delete(m.templates, day)
	return nil
}

func (m *memSchedule) AddDayOff(_ context.Context, d *domain.DayOff) error {
	key := d.Date.Format(domain.DateFormat)
	if _, ok := m.daysOff[key]; !ok {
		m.daysOff[key] = d
	}
	return nil
}

func (m *memSchedule) ListDaysOff(_ context.Context, _ int64, from, to time.Time) ([]*domain.DayOff, error) {
	var result []*domain.DayOff
	for _, d := range (domain.DateRange{From: from, To: to}).Dates() {
		if off, ok := m.daysOff[d.Format(domain.DateFormat)]; ok {
			result = append(result, off)
		}
	}
	return result, nil
}

func (m *memSchedule) DeleteDayOff(_ context.Context, _ int64, date time.Time) error {
	key := date.Format(domain.DateFormat)
	if _, ok := m.daysOff[key]; !ok {
		return scheduleRepo.ErrDayOffNotFound
	}
	delete(m.daysOff, key)
	return nil
}

type providers struct{}

func (providers) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	if id != providerID {
		return nil, fmt.Errorf("get provider: %w", domain.ErrNotFound)
	}
	return &domain.Provider{ID: id, Active: true}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mondayRequest() *models.SetTemplateRequest {
	return &models.SetTemplateRequest{
		UserID:              providerID,
		ProviderID:          providerID,
		DayOfWeek:           int(time.Monday),
		StartTime:           "09:00",
		EndTime:             "18:00",
		BreakStart:          ptr.Ptr("13:00"),
		BreakEnd:            ptr.Ptr("14:00"),
		SlotDurationMinutes: 30,
	}
}

func TestService_SetTemplateUpsertsPerWeekday(t *testing.T) {
	ctx := context.Background()
	repo := newMemSchedule()
	svc := NewService(repo, providers{}, nopLogger{})

	first, err := svc.SetTemplate(ctx, mondayRequest())
	require.NoError(t, err)
	assert.Equal(t, "13:00", *first.BreakStart)

	req := mondayRequest()
	req.EndTime = "17:00"
	req.BreakStart, req.BreakEnd = nil, nil
	req.SlotDurationMinutes = 0
	second, err := svc.SetTemplate(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.BreakStart)
	assert.Equal(t, domain.DefaultSlotDurationMinutes, second.SlotDurationMinutes)

	list, err := svc.GetTemplates(ctx, providerID)
	require.NoError(t, err)
	require.Len(t, list.Templates, 1)
	assert.Equal(t, "17:00", list.Templates[0].EndTime)
}

func TestService_SetTemplateValidation(t *testing.T) {
	svc := NewService(newMemSchedule(), providers{}, nopLogger{})

	tests := []struct {
		name   string
		modify func(r *models.SetTemplateRequest)
		want   error
	}{
		{"начало после конца", func(r *models.SetTemplateRequest) { r.StartTime = "19:00" }, domain.ErrValidation},
		{"перерыв вне рабочих часов", func(r *models.SetTemplateRequest) { r.BreakEnd = ptr.Ptr("18:30") }, domain.ErrValidation},
		{"перерыв без конца", func(r *models.SetTemplateRequest) { r.BreakEnd = nil }, domain.ErrValidation},
		{"слот короче минимума", func(r *models.SetTemplateRequest) { r.SlotDurationMinutes = 1 }, domain.ErrValidation},
		{"слот длиннее максимума", func(r *models.SetTemplateRequest) { r.SlotDurationMinutes = 600 }, domain.ErrValidation},
		{"неверный формат времени", func(r *models.SetTemplateRequest) { r.StartTime = "9am" }, ErrInvalidInput},
		{"день недели вне диапазона", func(r *models.SetTemplateRequest) { r.DayOfWeek = 7 }, ErrInvalidInput},
		{"чужое расписание", func(r *models.SetTemplateRequest) { r.UserID = 2 }, ErrAccessDenied},
		{"нет мастера", func(r *models.SetTemplateRequest) { r.UserID, r.ProviderID = 5, 5 }, ErrProviderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mondayRequest()
			tt.modify(req)

			_, err := svc.SetTemplate(context.Background(), req)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_RemoveTemplate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemSchedule(), providers{}, nopLogger{})
	_, err := svc.SetTemplate(ctx, mondayRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveTemplate(ctx, providerID, 2, int(time.Monday)), ErrAccessDenied)
	require.NoError(t, svc.RemoveTemplate(ctx, providerID, providerID, int(time.Monday)))
	assert.ErrorIs(t, svc.RemoveTemplate(ctx, providerID, providerID, int(time.Monday)), ErrTemplateNotFound)
	assert.ErrorIs(t, svc.RemoveTemplate(ctx, providerID, providerID, 9), ErrInvalidInput)
}

func TestService_DaysOff(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemSchedule(), providers{}, nopLogger{})
	req := &models.DayOffRequest{UserID: providerID, ProviderID: providerID, Date: "2030-03-04", Reason: ptr.Ptr(" отпуск ")}

	require.NoError(t, svc.MarkDayOff(ctx, req))
	require.NoError(t, svc.MarkDayOff(ctx, req), "повторная отметка идемпотентна")

	from := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2030, 3, 31, 0, 0, 0, 0, time.UTC)
	list, err := svc.GetDaysOff(ctx, providerID, from, to)
	require.NoError(t, err)
	require.Len(t, list.DaysOff, 1)
	assert.Equal(t, "2030-03-04", list.DaysOff[0].Date)
	assert.Equal(t, "отпуск", *list.DaysOff[0].Reason)

	require.NoError(t, svc.RemoveDayOff(ctx, providerID, providerID, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)))
	err = svc.RemoveDayOff(ctx, providerID, providerID, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrDayOffNotFound)

	list, err = svc.GetDaysOff(ctx, providerID, from, to)
	require.NoError(t, err)
	assert.NotNil(t, list.DaysOff)
	assert.Empty(t, list.DaysOff)
}

func TestService_DaysOffErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemSchedule(), providers{}, nopLogger{})

	err := svc.MarkDayOff(ctx, &models.DayOffRequest{UserID: providerID, ProviderID: providerID, Date: "04.03.2030"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.MarkDayOff(ctx, &models.DayOffRequest{UserID: 2, ProviderID: providerID, Date: "2030-03-04"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	from := time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.GetDaysOff(ctx, providerID, from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetDaysOff(ctx, providerID, from, from.AddDate(2, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetDaysOff(ctx, 7, from, from)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestService_SetTemplateRepositoryFailure(t *testing.T) {
	repo := newMemSchedule()
	repo.err = fmt.Errorf("upsert: %w", scheduleRepo.ErrExecQuery)
	svc := NewService(repo, providers{}, nopLogger{})

	_, err := svc.SetTemplate(context.Background(), mondayRequest())

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
