package records

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for an unknown record id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid covers malformed input and uniqueness conflicts.
	ErrInvalid = errors.New("invalid record")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
