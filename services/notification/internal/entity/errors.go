package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermission       = errors.New("permission denied")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrSweepInProgress  = errors.New("reminder sweep already in progress")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError reports a missing or malformed input field. It matches
// ErrValidationFailed with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
