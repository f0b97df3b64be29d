package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// ActiveStatuses statuses of appointments that are still ahead
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

// OccupyingStatuses statuses that keep the provider's time taken.
// A completed appointment still holds its interval, only cancellation frees it
var OccupyingStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted}

// IsTerminal returns true for statuses without outgoing transitions
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Valid checks that the status is known
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// AppointmentAction an action that moves an appointment between statuses
type AppointmentAction string

const (
	ActionAccept   AppointmentAction = "accept"
	ActionReject   AppointmentAction = "reject"
	ActionCancel   AppointmentAction = "cancel"
	ActionComplete AppointmentAction = "complete"
)

// transitions action -> allowed source statuses -> target status
var transitions = map[AppointmentAction]struct {
	from []AppointmentStatus
	to   AppointmentStatus
}{
	ActionAccept:   {from: []AppointmentStatus{StatusPending}, to: StatusConfirmed},
	ActionReject:   {from: []AppointmentStatus{StatusPending, StatusConfirmed}, to: StatusCancelled},
	ActionCancel:   {from: []AppointmentStatus{StatusPending, StatusConfirmed}, to: StatusCancelled},
	ActionComplete: {from: []AppointmentStatus{StatusConfirmed}, to: StatusCompleted},
}

// Next returns the status reached by applying the action, or ErrInvalidTransition
func (s AppointmentStatus) Next(action AppointmentAction) (AppointmentStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	for _, from := range t.from {
		if from == s {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s appointment in status %s", ErrInvalidTransition, action, s)
}

// SourceStatuses returns the statuses the action can be applied to
func (a AppointmentAction) SourceStatuses() []AppointmentStatus {
	t, ok := transitions[a]
	if !ok {
		return nil
	}
	return append([]AppointmentStatus(nil), t.from...)
}

// Valid checks that the action is known
func (a AppointmentAction) Valid() bool {
	_, ok := transitions[a]
	return ok
}

// Role of the party acting on an appointment
type Role string

const (
	RoleProvider Role = "provider"
	RoleClient   Role = "client"
)

// Actor identifies who performs an action
type Actor struct {
	Role Role
	ID   int64
}

// Appointment a booked interval of a provider
type Appointment struct {
	ID              int64
	ProviderID      int64
	ClientID        int64
	ServiceID       int64
	AppointmentDate time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	Status          AppointmentStatus

	// Denormalized for notifications and history
	ServiceName  string
	ServicePrice float64

	Comment            *string
	CancellationReason *string
	CancelledBy        *Role
	Rating             *int
	Review             *string
	ReminderSent       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment is neither cancelled nor completed
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// OccupiesSlot returns true if the appointment blocks the provider's time
func (a *Appointment) OccupiesSlot() bool {
	return a.Status != StatusCancelled
}

// StartsAt returns the start instant in the given location
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	y, m, d := a.AppointmentDate.Date()
	return a.StartTime.On(time.Date(y, m, d, 0, 0, 0, 0, loc))
}

// BelongsTo returns true if the actor is a party of the appointment
func (a *Appointment) BelongsTo(actor Actor) bool {
	switch actor.Role {
	case RoleProvider:
		return a.ProviderID == actor.ID
	case RoleClient:
		return a.ClientID == actor.ID
	}
	return false
}

// CanReview returns true if a review can still be left
func (a *Appointment) CanReview() bool {
	return a.Status == StatusCompleted && a.Rating == nil
}

// AppointmentsFilter filter for appointment lists
type AppointmentsFilter struct {
	ProviderID      *int64
	ClientID        *int64
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *AppointmentStatus
	Statuses        []AppointmentStatus // used when Status is nil
	IncludeInactive bool                // include cancelled and completed
}
