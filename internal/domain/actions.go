package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	appointmentTokenPrefix = "appt"
	reviewTokenPrefix      = "review"
)

// Command a decoded button press attached to a notification.
// Implemented by ActionCommand and ReviewCommand
type Command interface {
	isCommand()
}

// ActionCommand a decoded appointment button press
type ActionCommand struct {
	Action        AppointmentAction
	AppointmentID int64
}

// ReviewCommand a decoded rating button press
type ReviewCommand struct {
	AppointmentID int64
	Rating        int
}

func (ActionCommand) isCommand() {}
func (ReviewCommand) isCommand() {}

// ParseToken decodes any notification token by its prefix
func ParseToken(token string) (Command, error) {
	prefix, _, _ := strings.Cut(strings.TrimSpace(token), ":")
	switch prefix {
	case appointmentTokenPrefix:
		return ParseActionToken(token)
	case reviewTokenPrefix:
		return ParseReviewToken(token)
	}
	return nil, fmt.Errorf("%w: unknown token %q", ErrValidation, token)
}

// ActionToken encodes an appointment action as "appt:<action>:<id>"
func ActionToken(action AppointmentAction, appointmentID int64) string {
	return fmt.Sprintf("%s:%s:%d", appointmentTokenPrefix, action, appointmentID)
}

// ReviewToken encodes a rating as "review:<id>:<rating>"
func ReviewToken(appointmentID int64, rating int) string {
	return fmt.Sprintf("%s:%d:%d", reviewTokenPrefix, appointmentID, rating)
}

// ParseActionToken decodes a token produced by ActionToken
func ParseActionToken(token string) (ActionCommand, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 3 || parts[0] != appointmentTokenPrefix {
		return ActionCommand{}, fmt.Errorf("%w: unknown action token %q", ErrValidation, token)
	}

	action := AppointmentAction(parts[1])
	if !action.Valid() {
		return ActionCommand{}, fmt.Errorf("%w: unknown action %q", ErrValidation, parts[1])
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return ActionCommand{}, fmt.Errorf("%w: invalid appointment id in token %q", ErrValidation, token)
	}

	return ActionCommand{Action: action, AppointmentID: id}, nil
}

// ParseReviewToken decodes a token produced by ReviewToken
func ParseReviewToken(token string) (ReviewCommand, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 3 || parts[0] != reviewTokenPrefix {
		return ReviewCommand{}, fmt.Errorf("%w: unknown review token %q", ErrValidation, token)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return ReviewCommand{}, fmt.Errorf("%w: invalid appointment id in token %q", ErrValidation, token)
	}
	rating, err := strconv.Atoi(parts[2])
	if err != nil || rating < MinRating || rating > MaxRating {
		return ReviewCommand{}, fmt.Errorf("%w: rating must be %d..%d", ErrValidation, MinRating, MaxRating)
	}

	return ReviewCommand{AppointmentID: id, Rating: rating}, nil
}
