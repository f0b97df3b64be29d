package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Provider a person offering services on a schedule
type Provider struct {
	ID          int64
	DisplayName string
	Active      bool
	CreatedAt   time.Time
}

// Client a person booking appointments
type Client struct {
	ID          int64
	DisplayName string
	Contact     *string // normalized phone, digits with optional leading "+"
	CreatedAt   time.Time
}

// Service a bookable offering of a provider
type Service struct {
	ID              int64
	ProviderID      int64
	Name            string
	Price           float64
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
}

// Validate checks service invariants
func (s *Service) Validate() error {
	if s.ProviderID <= 0 {
		return fmt.Errorf("%w: provider id must be positive", ErrValidation)
	}
	if strings.TrimSpace(s.Name) == "" || utf8.RuneCountInString(s.Name) > MaxDisplayNameLength {
		return fmt.Errorf("%w: service name must be 1..%d characters", ErrValidation, MaxDisplayNameLength)
	}
	if s.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if s.DurationMinutes < MinServiceDurationMinutes || s.DurationMinutes > MaxServiceDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrValidation, MinServiceDurationMinutes, MaxServiceDurationMinutes)
	}
	return nil
}

// ValidateDisplayName checks a human-readable name
func ValidateDisplayName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > MaxDisplayNameLength {
		return fmt.Errorf("%w: display name must be 1..%d characters", ErrValidation, MaxDisplayNameLength)
	}
	return nil
}

// NormalizeContact keeps digits and a leading "+" and checks the length.
// Accepts the usual separators: spaces, dashes, dots and parentheses
func NormalizeContact(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: contact is empty", ErrValidation)
	}

	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("%w: contact contains invalid character %q", ErrValidation, r)
		}
	}

	if digits < MinContactDigits || digits > MaxContactDigits {
		return "", fmt.Errorf("%w: contact must contain %d..%d digits", ErrValidation, MinContactDigits, MaxContactDigits)
	}
	return b.String(), nil
}
