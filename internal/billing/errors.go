package billing

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an agreement or installment id does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a single operation and leaves state unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
