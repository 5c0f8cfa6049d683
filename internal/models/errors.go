package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel every ValidationError unwraps to.
var ErrValidation = errors.New("validation error")

// ValidationError reports a configuration document that does not match its schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid document: %s", e.Reason)
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// prefixed re-roots a nested ValidationError under parent.
func prefixed(parent string, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		field := parent
		if verr.Field != "" {
			field = parent + "." + verr.Field
		}
		return &ValidationError{Field: field, Reason: verr.Reason}
	}
	return err
}
