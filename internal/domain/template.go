package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// AvailabilityTemplate weekly working hours of a provider for one weekday
type AvailabilityTemplate struct {
	ID                  int64
	ProviderID          int64
	DayOfWeek           time.Weekday // 0 = Sunday
	StartTime           types.TimeString
	EndTime             types.TimeString
	BreakStart          *types.TimeString
	BreakEnd            *types.TimeString
	SlotDurationMinutes int
	UpdatedAt           time.Time
}

// HasBreak returns true if the template has a break interval
func (t *AvailabilityTemplate) HasBreak() bool {
	return t.BreakStart != nil && t.BreakEnd != nil
}

// Validate checks time ordering: start < end, start <= breakStart < breakEnd <= end
func (t *AvailabilityTemplate) Validate() error {
	if t.ProviderID <= 0 {
		return fmt.Errorf("%w: provider id must be positive", ErrValidation)
	}
	if t.DayOfWeek < time.Sunday || t.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day of week must be 0..6", ErrValidation)
	}
	if err := t.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrValidation, err)
	}
	if err := t.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: end time: %v", ErrValidation, err)
	}
	if !t.StartTime.IsBefore(t.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrValidation)
	}

	if (t.BreakStart == nil) != (t.BreakEnd == nil) {
		return fmt.Errorf("%w: break start and end must be set together", ErrValidation)
	}
	if t.HasBreak() {
		if err := t.BreakStart.Validate(); err != nil {
			return fmt.Errorf("%w: break start: %v", ErrValidation, err)
		}
		if err := t.BreakEnd.Validate(); err != nil {
			return fmt.Errorf("%w: break end: %v", ErrValidation, err)
		}
		if t.BreakStart.IsBefore(t.StartTime) || !t.BreakStart.IsBefore(*t.BreakEnd) || t.BreakEnd.IsAfter(t.EndTime) {
			return fmt.Errorf("%w: break must lie within working hours", ErrValidation)
		}
	}

	if t.SlotDurationMinutes < MinSlotDurationMinutes || t.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrValidation, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	return nil
}

// DayOff a date on which the provider does not work
type DayOff struct {
	ProviderID int64
	Date       time.Time
	Reason     *string
}

// DateRange inclusive range of calendar dates
type DateRange struct {
	From time.Time
	To   time.Time
}

// Dates enumerates the range day by day. Empty if From is after To
func (r DateRange) Dates() []time.Time {
	from := TruncateDate(r.From)
	to := TruncateDate(r.To)

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// TruncateDate drops the time-of-day part and keeps the calendar date in UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares calendar dates
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return d, nil
}
