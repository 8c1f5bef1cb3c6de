package models

import "fmt"

// AddonValidationError is returned by Addon and AddonBundle constructors and
// mutators when a structural invariant is violated. These are caller-input
// errors and are never retried.
type AddonValidationError struct {
	Field   string
	Message string
}

func (e *AddonValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationError(field, format string, args ...interface{}) error {
	return &AddonValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
