package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the target record does not exist (any more).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate reports a unique constraint collision, e.g. a taken callsign.
	ErrDuplicate = errors.New("duplicate")
	// ErrMalformedInput reports a message of the wrong kind, e.g. a photo where text is expected.
	ErrMalformedInput = errors.New("malformed input")
	// ErrClosed reports an action on an event whose survey has expired.
	ErrClosed = errors.New("survey closed")
	// ErrNoSeats reports a full car.
	ErrNoSeats = errors.New("no free seats")
)

// ValidationError is a rejected field value. Reason is shown to the user.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Code is used by the handler summary line.
func (e *ValidationError) Code() string { return "validation" }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ReasonOf extracts the user facing reason of a validation error.
func ReasonOf(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}
