package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/service/catalog/models"
)

// Service сервис справочника мастеров и услуг
type Service struct {
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса справочника
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// CreateProvider создает активного мастера
func (s *Service) CreateProvider(ctx context.Context, req *models.CreateProviderRequest) (*models.ProviderResponse, error) {
	s.logger.Info("CreateProvider: creating provider %q", req.DisplayName)

	if err := domain.ValidateDisplayName(req.DisplayName); err != nil {
		s.logger.Warn("CreateProvider: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	provider, err := s.catalogRepo.CreateProvider(ctx, &domain.Provider{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Active:      true,
	})
	if err != nil {
		s.logger.Error("CreateProvider: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateProvider - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateProvider: created provider id=%d", provider.ID)
	return models.FromDomainProvider(provider), nil
}

// ListProviders возвращает активных мастеров
func (s *Service) ListProviders(ctx context.Context) (*models.ProviderListResponse, error) {
	providers, err := s.catalogRepo.ListActiveProviders(ctx)
	if err != nil {
		s.logger.Error("ListProviders: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListProviders - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainProviderList(providers), nil
}

// SetProviderActive включает или выключает мастера. Доступно только самому мастеру
func (s *Service) SetProviderActive(ctx context.Context, providerID int64, req *models.SetActiveRequest) error {
	s.logger.Info("SetProviderActive: provider=%d, active=%t by user=%d", providerID, req.Active, req.UserID)

	if providerID != req.UserID {
		s.logger.Warn("SetProviderActive: user=%d is not provider=%d", req.UserID, providerID)
		return ErrAccessDenied
	}

	if err := s.catalogRepo.SetProviderActive(ctx, providerID, req.Active); err != nil {
		if errors.Is(err, catalogRepo.ErrProviderNotFound) {
			return ErrProviderNotFound
		}
		s.logger.Error("SetProviderActive: repository error for provider=%d: %v", providerID, err)
		return fmt.Errorf("%w: SetProviderActive - repository error: %v", ErrInternal, err)
	}
	return nil
}

// CreateService создает услугу мастера. Доступно только самому мастеру
func (s *Service) CreateService(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("CreateService: provider=%d, name=%q by user=%d", req.ProviderID, req.Name, req.UserID)

	// 1. Права доступа
	if req.ProviderID != req.UserID {
		s.logger.Warn("CreateService: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	// 2. Валидация
	service := req.ToDomainService()
	service.Name = strings.TrimSpace(service.Name)
	if err := service.Validate(); err != nil {
		s.logger.Warn("CreateService: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Мастер существует
	if err := s.checkProvider(ctx, "CreateService", req.ProviderID); err != nil {
		return nil, err
	}

	// 4. Создаем услугу
	created, err := s.catalogRepo.CreateService(ctx, service)
	if err != nil {
		s.logger.Error("CreateService: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateService - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateService: created service id=%d for provider=%d", created.ID, created.ProviderID)
	return models.FromDomainService(created), nil
}

// ListServices возвращает активные услуги мастера
func (s *Service) ListServices(ctx context.Context, providerID int64) (*models.ServiceListResponse, error) {
	if err := s.checkProvider(ctx, "ListServices", providerID); err != nil {
		return nil, err
	}

	services, err := s.catalogRepo.ListActiveServices(ctx, providerID)
	if err != nil {
		s.logger.Error("ListServices: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListServices - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainServiceList(services), nil
}

// SetServiceActive включает или выключает услугу. Черновики с выключенной услугой
// откатываются к выбору услуги при следующем ходе
func (s *Service) SetServiceActive(ctx context.Context, serviceID int64, req *models.SetActiveRequest) error {
	s.logger.Info("SetServiceActive: service=%d, active=%t by user=%d", serviceID, req.Active, req.UserID)

	service, err := s.catalogRepo.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("SetServiceActive: service id=%d not found", serviceID)
			return ErrServiceNotFound
		}
		s.logger.Error("SetServiceActive: repository error for service=%d: %v", serviceID, err)
		return fmt.Errorf("%w: SetServiceActive - get service: %v", ErrInternal, err)
	}

	if service.ProviderID != req.UserID {
		s.logger.Warn("SetServiceActive: user=%d does not own service=%d", req.UserID, serviceID)
		return ErrAccessDenied
	}

	if err := s.catalogRepo.SetServiceActive(ctx, serviceID, req.Active); err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		s.logger.Error("SetServiceActive: repository error for service=%d: %v", serviceID, err)
		return fmt.Errorf("%w: SetServiceActive - repository error: %v", ErrInternal, err)
	}
	return nil
}

func (s *Service) checkProvider(ctx context.Context, op string, providerID int64) error {
	provider, err := s.catalogRepo.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProviderNotFound) {
			s.logger.Warn("%s: provider id=%d not found", op, providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("%s: failed to get provider id=%d: %v", op, providerID, err)
		return fmt.Errorf("%w: %s - failed to get provider: %v", ErrInternal, op, err)
	}
	if !provider.Active {
		s.logger.Warn("%s: provider id=%d is inactive", op, providerID)
		return ErrProviderNotFound
	}
	return nil
}
