package domain

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Tenant data errors
var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Validation errors
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrWeakPassword    = errors.New("password does not meet requirements")
	ErrUnknownActivity = errors.New("unknown activity")
)

// ValidationError describes a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Is enables errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
