package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID means the raw identifier is not a valid ObjectID hex
	// string. Returned before any store access.
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound means no document exists for the given identifier.
	ErrNotFound = errors.New("not found")

	// ErrWriteRejected means the store did not acknowledge a write.
	ErrWriteRejected = errors.New("write rejected by store")
)

// ValidationError reports the first violated schema rule of a payload.
// Validation is fail-fast: at most one of these per call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func violation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: field + " " + fmt.Sprintf(format, args...)}
}
