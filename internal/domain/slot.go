package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Slot a bookable interval [StartTime, EndTime) derived from a template
type Slot struct {
	ProviderID int64
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
}

// Overlaps checks half-open interval intersection. Adjacent intervals do not overlap
func Overlaps(aStart, aEnd, bStart, bEnd types.TimeString) bool {
	return aStart.IsBefore(bEnd) && aEnd.IsAfter(bStart)
}

// OverlapsAppointment returns true if the slot intersects the appointment on the same date
func (s *Slot) OverlapsAppointment(a *Appointment) bool {
	if !SameDate(s.Date, a.AppointmentDate) || a.ProviderID != s.ProviderID {
		return false
	}
	return Overlaps(s.StartTime, s.EndTime, a.StartTime, a.EndTime)
}
