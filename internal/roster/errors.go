package roster

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch means a line does not end in a registration number.
	ErrNoMatch = errors.New("no match")
	// ErrMissingField means a parsed student lacks First or Reg.
	ErrMissingField = errors.New("missing field")
	// ErrDuplicate means the registration number is already known.
	ErrDuplicate = errors.New("duplicate registration number")
)

// ParseError reports a line that could not be parsed.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Text, ErrNoMatch)
}

func (e *ParseError) Unwrap() error { return ErrNoMatch }

// ValidationError reports a student with a required field left empty.
type ValidationError struct {
	Field   string
	Student Student
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validating %s: %v: %s", e.Student, ErrMissingField, e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrMissingField }
