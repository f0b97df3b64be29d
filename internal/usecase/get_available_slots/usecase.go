package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// UseCase use case для получения доступных слотов мастера на дату.
// Если в контексте есть транзакция, чтение записей идет в ней (перепроверка при финализации)
type UseCase struct {
	catalogRepo      CatalogRepository
	scheduleRepo     ScheduleRepository
	appointmentRepo  AppointmentRepository
	minNoticeMinutes int
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case.
// location задает часовой пояс, в котором считается "сегодня"
func NewUseCase(
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	appointmentRepo AppointmentRepository,
	minNoticeMinutes int,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		catalogRepo:      catalogRepo,
		scheduleRepo:     scheduleRepo,
		appointmentRepo:  appointmentRepo,
		minNoticeMinutes: minNoticeMinutes,
		location:         location,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: provider=%d, service=%d, date=%s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.TruncateDate(req.Date)
	now := uc.timeProvider.Now().In(uc.location)

	// 2. Дата не в прошлом
	if isDateInPast(date, now) {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", date.Format(domain.DateFormat))
		return nil, ErrDateInPast
	}

	// 3. Мастер и услуга
	service, err := uc.loadService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	// 4. Шаблоны и выходные
	templates, err := uc.scheduleRepo.ListTemplates(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get templates for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get templates: %w", ErrInternal, err)
	}

	daysOff, err := uc.scheduleRepo.ListDaysOff(ctx, req.ProviderID, date, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get days off for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get days off: %w", ErrInternal, err)
	}

	// 5. Кандидаты с длиной слота, равной длительности услуги
	candidates := GenerateSlots(templates, daysOff, domain.DateRange{From: date, To: date}, service.DurationMinutes)
	if len(candidates) == 0 {
		uc.logger.Info("GetAvailableSlots: provider=%d does not work on %s", req.ProviderID, date.Format(domain.DateFormat))
		return uc.response(req, date, service, candidates), nil
	}

	// 6. Активные записи на дату
	appointments, err := uc.appointmentRepo.ListOccupyingByProviderAndDate(ctx, req.ProviderID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
	}

	// 7. Вычитаем занятые и слишком близкие слоты
	slots := excludeBooked(candidates, appointments)
	slots = excludeTooSoon(slots, now, uc.minNoticeMinutes)
	sortSlots(slots)

	uc.logger.Info("GetAvailableSlots: %d of %d slots free for provider=%d, service=%d, date=%s",
		len(slots), len(candidates), req.ProviderID, req.ServiceID, date.Format(domain.DateFormat))

	return uc.response(req, date, service, slots), nil
}

func (uc *UseCase) loadService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error) {
	provider, err := uc.catalogRepo.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("GetAvailableSlots: provider id=%d not found", providerID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %w", ErrInternal, err)
	}
	if !provider.Active {
		uc.logger.Warn("GetAvailableSlots: provider id=%d is inactive", providerID)
		return nil, ErrProviderNotFound
	}

	service, err := uc.catalogRepo.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", serviceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.Active || service.ProviderID != providerID {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not offered by provider id=%d", serviceID, providerID)
		return nil, ErrServiceNotFound
	}

	return service, nil
}

func (uc *UseCase) response(req *Request, date time.Time, service *domain.Service, slots []domain.Slot) *Response {
	return &Response{
		ProviderID:      req.ProviderID,
		ServiceID:       req.ServiceID,
		Date:            date,
		DurationMinutes: service.DurationMinutes,
		Service:         service,
		Slots:           slots,
	}
}
