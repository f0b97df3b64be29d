package get_available_dates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

// UseCase use case для получения ближайших дат, на которые можно записаться
type UseCase struct {
	catalogRepo      CatalogRepository
	scheduleRepo     ScheduleRepository
	appointmentRepo  AppointmentRepository
	horizonDays      int
	minNoticeMinutes int
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case.
// horizonDays - сколько дней начиная с сегодняшнего просматривается
func NewUseCase(
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	appointmentRepo AppointmentRepository,
	horizonDays int,
	minNoticeMinutes int,
	location *time.Location,
	logger Logger,
) *UseCase {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultHorizonDays
	}
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		catalogRepo:      catalogRepo,
		scheduleRepo:     scheduleRepo,
		appointmentRepo:  appointmentRepo,
		horizonDays:      horizonDays,
		minNoticeMinutes: minNoticeMinutes,
		location:         location,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute возвращает даты в пределах горизонта, на которые есть хотя бы один свободный слот
// длительностью услуги
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableDates: provider=%d, service=%d", req.ProviderID, req.ServiceID)

	// 1. Валидация
	if req.ProviderID <= 0 || req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: providerID and serviceID must be positive", ErrInvalidInput)
	}

	// 2. Мастер и услуга
	service, err := uc.loadService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.location)
	today := domain.TruncateDate(now)
	dateRange := domain.DateRange{From: today, To: today.AddDate(0, 0, uc.horizonDays-1)}

	// 3. Шаблоны, выходные и записи на весь горизонт одним запросом каждый
	templates, err := uc.scheduleRepo.ListTemplates(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to get templates for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get templates: %w", ErrInternal, err)
	}

	daysOff, err := uc.scheduleRepo.ListDaysOff(ctx, req.ProviderID, dateRange.From, dateRange.To)
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to get days off for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get days off: %w", ErrInternal, err)
	}

	candidates := get_available_slots.GenerateSlots(templates, daysOff, dateRange, service.DurationMinutes)
	if len(candidates) == 0 {
		return &Response{ProviderID: req.ProviderID, ServiceID: req.ServiceID, Dates: []time.Time{}}, nil
	}

	appointments, err := uc.appointmentRepo.List(ctx, domain.AppointmentsFilter{
		ProviderID: &req.ProviderID,
		StartDate:  &dateRange.From,
		EndDate:    &dateRange.To,
		Statuses:   domain.OccupyingStatuses,
	})
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
	}

	// 4. Дата попадает в ответ по первому свободному слоту
	earliest := now.Hour()*60 + now.Minute() + uc.minNoticeMinutes
	dates := make([]time.Time, 0)
	seen := make(map[string]struct{})

	for i := range candidates {
		slot := &candidates[i]
		key := slot.Date.Format(domain.DateFormat)
		if _, ok := seen[key]; ok {
			continue
		}
		if domain.SameDate(slot.Date, today) && slot.StartTime.Minutes() < earliest {
			continue
		}
		if isTaken(slot, appointments) {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, slot.Date)
	}

	uc.logger.Info("GetAvailableDates: %d dates available for provider=%d, service=%d", len(dates), req.ProviderID, req.ServiceID)

	return &Response{ProviderID: req.ProviderID, ServiceID: req.ServiceID, Dates: dates}, nil
}

func isTaken(slot *domain.Slot, appointments []*domain.Appointment) bool {
	for _, appt := range appointments {
		if appt.OccupiesSlot() && slot.OverlapsAppointment(appt) {
			return true
		}
	}
	return false
}

func (uc *UseCase) loadService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error) {
	provider, err := uc.catalogRepo.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailableDates: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %w", ErrInternal, err)
	}
	if !provider.Active {
		return nil, ErrProviderNotFound
	}

	service, err := uc.catalogRepo.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableDates: failed to get service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.Active || service.ProviderID != providerID {
		uc.logger.Warn("GetAvailableDates: service id=%d is not offered by provider id=%d", serviceID, providerID)
		return nil, ErrServiceNotFound
	}

	return service, nil
}
