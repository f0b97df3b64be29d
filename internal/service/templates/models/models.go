package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модели

// SetTemplateRequest запрос на установку рабочих часов мастера на день недели
type SetTemplateRequest struct {
	UserID              int64   `json:"-"`
	ProviderID          int64   `json:"-"`
	DayOfWeek           int     `json:"-"` // 0 = воскресенье
	StartTime           string  `json:"startTime"`
	EndTime             string  `json:"endTime"`
	BreakStart          *string `json:"breakStart,omitempty"`
	BreakEnd            *string `json:"breakEnd,omitempty"`
	SlotDurationMinutes int     `json:"slotDurationMinutes"` // 0 = значение по умолчанию
}

// ToDomainTemplate разбирает время и собирает domain модель без проверки порядка интервалов
func (r *SetTemplateRequest) ToDomainTemplate() (*domain.AvailabilityTemplate, error) {
	tpl := &domain.AvailabilityTemplate{
		ProviderID:          r.ProviderID,
		DayOfWeek:           time.Weekday(r.DayOfWeek),
		SlotDurationMinutes: r.SlotDurationMinutes,
	}
	if tpl.SlotDurationMinutes == 0 {
		tpl.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}

	var err error
	if tpl.StartTime, err = parseTime("startTime", r.StartTime); err != nil {
		return nil, err
	}
	if tpl.EndTime, err = parseTime("endTime", r.EndTime); err != nil {
		return nil, err
	}
	if r.BreakStart != nil {
		bs, err := parseTime("breakStart", *r.BreakStart)
		if err != nil {
			return nil, err
		}
		tpl.BreakStart = &bs
	}
	if r.BreakEnd != nil {
		be, err := parseTime("breakEnd", *r.BreakEnd)
		if err != nil {
			return nil, err
		}
		tpl.BreakEnd = &be
	}
	return tpl, nil
}

// DayOffRequest запрос на отметку выходного
type DayOffRequest struct {
	UserID     int64   `json:"-"`
	ProviderID int64   `json:"-"`
	Date       string  `json:"date"` // "2025-10-15"
	Reason     *string `json:"reason,omitempty"`
}

// Response модели

// TemplateResponse ответ с шаблоном рабочего дня
type TemplateResponse struct {
	ID                  int64     `json:"id"`
	ProviderID          int64     `json:"providerId"`
	DayOfWeek           int       `json:"dayOfWeek"`
	StartTime           string    `json:"startTime"`
	EndTime             string    `json:"endTime"`
	BreakStart          *string   `json:"breakStart,omitempty"`
	BreakEnd            *string   `json:"breakEnd,omitempty"`
	SlotDurationMinutes int       `json:"slotDurationMinutes"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// TemplateListResponse недельное расписание мастера
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// DayOffResponse ответ с выходным
type DayOffResponse struct {
	ProviderID int64   `json:"providerId"`
	Date       string  `json:"date"`
	Reason     *string `json:"reason,omitempty"`
}

// DayOffListResponse список выходных
type DayOffListResponse struct {
	DaysOff []DayOffResponse `json:"daysOff"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(t *domain.AvailabilityTemplate) *TemplateResponse {
	if t == nil {
		return nil
	}
	resp := &TemplateResponse{
		ID:                  t.ID,
		ProviderID:          t.ProviderID,
		DayOfWeek:           int(t.DayOfWeek),
		StartTime:           t.StartTime.String(),
		EndTime:             t.EndTime.String(),
		SlotDurationMinutes: t.SlotDurationMinutes,
		UpdatedAt:           t.UpdatedAt,
	}
	if t.HasBreak() {
		bs, be := t.BreakStart.String(), t.BreakEnd.String()
		resp.BreakStart = &bs
		resp.BreakEnd = &be
	}
	return resp
}

// FromDomainTemplateList конвертирует список шаблонов
func FromDomainTemplateList(templates []*domain.AvailabilityTemplate) *TemplateListResponse {
	resp := &TemplateListResponse{Templates: make([]TemplateResponse, 0, len(templates))}
	for _, t := range templates {
		if r := FromDomainTemplate(t); r != nil {
			resp.Templates = append(resp.Templates, *r)
		}
	}
	return resp
}

// FromDomainDayOffList конвертирует список выходных
func FromDomainDayOffList(daysOff []*domain.DayOff) *DayOffListResponse {
	resp := &DayOffListResponse{DaysOff: make([]DayOffResponse, 0, len(daysOff))}
	for _, d := range daysOff {
		resp.DaysOff = append(resp.DaysOff, DayOffResponse{
			ProviderID: d.ProviderID,
			Date:       d.Date.Format(domain.DateFormat),
			Reason:     d.Reason,
		})
	}
	return resp
}

func parseTime(field, value string) (types.TimeString, error) {
	t, err := types.NewTimeStringFromString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
	}
	return t, nil
}
