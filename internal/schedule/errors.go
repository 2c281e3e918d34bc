package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a new schedule overlaps an existing one.
	ErrConflict = errors.New("schedule conflict")

	// ErrNotFound is returned when no schedule has the requested id.
	ErrNotFound = errors.New("schedule not found")

	// ErrInvalidRange is returned when a schedule does not start before it ends.
	ErrInvalidRange = errors.New("start must be before end")

	// ErrIDsExhausted is returned when the id counter cannot advance.
	ErrIDsExhausted = errors.New("schedule ids exhausted")
)

// ConflictError reports the existing schedule that blocked an add.
type ConflictError struct {
	Existing  Schedule
	Candidate Schedule
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%q (%s) overlaps existing schedule %d: %q (%s)",
		e.Candidate.Subject, e.Candidate.Span(),
		e.Existing.ID, e.Existing.Subject, e.Existing.Span())
}

// Unwrap lets errors.Is match ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
