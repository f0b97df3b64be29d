package models

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модели

// CreateProviderRequest запрос на создание мастера
type CreateProviderRequest struct {
	DisplayName string `json:"displayName"`
}

// CreateServiceRequest запрос на создание услуги мастера
type CreateServiceRequest struct {
	UserID          int64   `json:"-"`
	ProviderID      int64   `json:"-"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
}

// SetActiveRequest запрос на включение или выключение мастера или услуги
type SetActiveRequest struct {
	UserID int64 `json:"-"`
	Active bool  `json:"active"`
}

// Response модели

// ProviderResponse ответ с данными мастера
type ProviderResponse struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"displayName"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProviderListResponse ответ со списком мастеров
type ProviderListResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID              int64     `json:"id"`
	ProviderID      int64     `json:"providerId"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"durationMinutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ServiceListResponse ответ со списком услуг
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}

// Методы конвертации

// FromDomainProvider конвертирует domain модель в DTO
func FromDomainProvider(p *domain.Provider) *ProviderResponse {
	if p == nil {
		return nil
	}
	return &ProviderResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

// FromDomainProviderList конвертирует список мастеров
func FromDomainProviderList(providers []*domain.Provider) *ProviderListResponse {
	resp := &ProviderListResponse{Providers: make([]ProviderResponse, 0, len(providers))}
	for _, p := range providers {
		if r := FromDomainProvider(p); r != nil {
			resp.Providers = append(resp.Providers, *r)
		}
	}
	return resp
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	return &ServiceResponse{
		ID:              s.ID,
		ProviderID:      s.ProviderID,
		Name:            s.Name,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		CreatedAt:       s.CreatedAt,
	}
}

// FromDomainServiceList конвертирует список услуг
func FromDomainServiceList(services []*domain.Service) *ServiceListResponse {
	resp := &ServiceListResponse{Services: make([]ServiceResponse, 0, len(services))}
	for _, s := range services {
		if r := FromDomainService(s); r != nil {
			resp.Services = append(resp.Services, *r)
		}
	}
	return resp
}

// ToDomainService конвертирует запрос в domain модель
func (r *CreateServiceRequest) ToDomainService() *domain.Service {
	return &domain.Service{
		ProviderID:      r.ProviderID,
		Name:            r.Name,
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
		Active:          true,
	}
}
