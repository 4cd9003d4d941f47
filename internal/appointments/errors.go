package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every error caused by caller input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the event id is unknown to the calendar.
	ErrNotFound = errors.New("event not found")
)

// ValidationError carries a message fit to show to the caller.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RequiredError reports a missing field as "<field> required".
func RequiredError(field string) error {
	return invalidf("%s required", field)
}
