package domain

import (
	"errors"
	"fmt"
)

// ErrDefinitionNotFound is returned when a definition ID cannot be found in the store.
var ErrDefinitionNotFound = errors.New("definition not found")

// ErrInstanceNotFound is returned when an instance ID cannot be found in the store.
var ErrInstanceNotFound = errors.New("instance not found")

// ValidationError is a client-caused rejection: malformed definition, unknown
// or disabled action, action not applicable from the current state, invalid
// reference, missing entity. The caller can recover by correcting its input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConsistencyFault signals an internal invariant violation: a referenced
// definition or state vanished underneath an instance. It indicates store
// corruption or a bug, never user error, and is not retried.
type ConsistencyFault struct {
	Reason string
}

func (e *ConsistencyFault) Error() string {
	return e.Reason
}

// Faultf builds a ConsistencyFault with a formatted reason.
func Faultf(format string, args ...any) *ConsistencyFault {
	return &ConsistencyFault{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a client-caused rejection.
// Store not-found sentinels count: a missing entity is correctable input.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrDefinitionNotFound) || errors.Is(err, ErrInstanceNotFound)
}

// IsConsistency reports whether err is (or wraps) an internal fault.
func IsConsistency(err error) bool {
	var cf *ConsistencyFault
	return errors.As(err, &cf)
}
