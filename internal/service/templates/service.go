package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/service/templates/models"
)

// maxDaysOffRange ограничение на диапазон выборки выходных
const maxDaysOffRange = 366

// Service сервис недельных шаблонов и выходных мастера
type Service struct {
	scheduleRepo ScheduleRepository
	providerRepo ProviderRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(scheduleRepo ScheduleRepository, providerRepo ProviderRepository, logger Logger) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		providerRepo: providerRepo,
		logger:       logger,
	}
}

// SetTemplate создает или заменяет рабочие часы мастера на день недели.
// Доступно только самому мастеру
func (s *Service) SetTemplate(ctx context.Context, req *models.SetTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("SetTemplate: provider=%d, day=%d, %s-%s by user=%d",
		req.ProviderID, req.DayOfWeek, req.StartTime, req.EndTime, req.UserID)

	// 1. Права доступа
	if err := s.checkOwner("SetTemplate", req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	// 2. Разбор и валидация интервалов
	tpl, err := req.ToDomainTemplate()
	if err != nil {
		s.logger.Warn("SetTemplate: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := tpl.Validate(); err != nil {
		s.logger.Warn("SetTemplate: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Мастер существует
	if err := s.checkProvider(ctx, "SetTemplate", req.ProviderID); err != nil {
		return nil, err
	}

	// 4. Upsert по (provider_id, day_of_week)
	saved, err := s.scheduleRepo.UpsertTemplate(ctx, tpl)
	if err != nil {
		s.logger.Error("SetTemplate: repository error: %v", err)
		return nil, fmt.Errorf("%w: SetTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("SetTemplate: template id=%d saved for provider=%d, day=%d", saved.ID, saved.ProviderID, saved.DayOfWeek)
	return models.FromDomainTemplate(saved), nil
}

// GetTemplates возвращает недельное расписание мастера
func (s *Service) GetTemplates(ctx context.Context, providerID int64) (*models.TemplateListResponse, error) {
	if err := s.checkProvider(ctx, "GetTemplates", providerID); err != nil {
		return nil, err
	}

	list, err := s.scheduleRepo.ListTemplates(ctx, providerID)
	if err != nil {
		s.logger.Error("GetTemplates: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetTemplates - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainTemplateList(list), nil
}

// RemoveTemplate убирает рабочие часы на день недели, день становится нерабочим
func (s *Service) RemoveTemplate(ctx context.Context, providerID, userID int64, day int) error {
	s.logger.Info("RemoveTemplate: provider=%d, day=%d by user=%d", providerID, day, userID)

	if err := s.checkOwner("RemoveTemplate", providerID, userID); err != nil {
		return err
	}
	if day < int(time.Sunday) || day > int(time.Saturday) {
		return fmt.Errorf("%w: day of week must be 0..6", ErrInvalidInput)
	}

	if err := s.scheduleRepo.DeleteTemplate(ctx, providerID, time.Weekday(day)); err != nil {
		if errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			s.logger.Warn("RemoveTemplate: no template for provider=%d, day=%d", providerID, day)
			return ErrTemplateNotFound
		}
		s.logger.Error("RemoveTemplate: repository error: %v", err)
		return fmt.Errorf("%w: RemoveTemplate - repository error: %v", ErrInternal, err)
	}
	return nil
}

// MarkDayOff отмечает дату выходным. Повторная отметка не ошибка
func (s *Service) MarkDayOff(ctx context.Context, req *models.DayOffRequest) error {
	s.logger.Info("MarkDayOff: provider=%d, date=%s by user=%d", req.ProviderID, req.Date, req.UserID)

	if err := s.checkOwner("MarkDayOff", req.ProviderID, req.UserID); err != nil {
		return err
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		s.logger.Warn("MarkDayOff: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var reason *string
	if req.Reason != nil {
		if r := strings.TrimSpace(*req.Reason); r != "" {
			if utf8.RuneCountInString(r) > domain.MaxCommentLength {
				return fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCommentLength)
			}
			reason = &r
		}
	}

	if err := s.checkProvider(ctx, "MarkDayOff", req.ProviderID); err != nil {
		return err
	}

	if err := s.scheduleRepo.AddDayOff(ctx, &domain.DayOff{ProviderID: req.ProviderID, Date: date, Reason: reason}); err != nil {
		s.logger.Error("MarkDayOff: repository error: %v", err)
		return fmt.Errorf("%w: MarkDayOff - repository error: %v", ErrInternal, err)
	}
	return nil
}

// GetDaysOff возвращает выходные мастера в диапазоне дат включительно
func (s *Service) GetDaysOff(ctx context.Context, providerID int64, from, to time.Time) (*models.DayOffListResponse, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}
	if to.Sub(from) > maxDaysOffRange*24*time.Hour {
		return nil, fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, maxDaysOffRange)
	}
	if err := s.checkProvider(ctx, "GetDaysOff", providerID); err != nil {
		return nil, err
	}

	list, err := s.scheduleRepo.ListDaysOff(ctx, providerID, from, to)
	if err != nil {
		s.logger.Error("GetDaysOff: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetDaysOff - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainDayOffList(list), nil
}

// RemoveDayOff снимает отметку выходного
func (s *Service) RemoveDayOff(ctx context.Context, providerID, userID int64, date time.Time) error {
	s.logger.Info("RemoveDayOff: provider=%d, date=%s by user=%d", providerID, date.Format(domain.DateFormat), userID)

	if err := s.checkOwner("RemoveDayOff", providerID, userID); err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteDayOff(ctx, providerID, date); err != nil {
		if errors.Is(err, scheduleRepo.ErrDayOffNotFound) {
			return ErrDayOffNotFound
		}
		s.logger.Error("RemoveDayOff: repository error: %v", err)
		return fmt.Errorf("%w: RemoveDayOff - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Вспомогательные методы

func (s *Service) checkOwner(op string, providerID, userID int64) error {
	if providerID != userID {
		s.logger.Warn("%s: user=%d cannot manage schedule of provider=%d", op, userID, providerID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) checkProvider(ctx context.Context, op string, providerID int64) error {
	if _, err := s.providerRepo.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("%s: provider id=%d not found", op, providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("%s: failed to get provider id=%d: %v", op, providerID, err)
		return fmt.Errorf("%w: %s - failed to get provider: %v", ErrInternal, op, err)
	}
	return nil
}
