package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Roster errors
	ErrPlayerNotFound = errors.New("player not found")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")

	// Session errors
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionExpired         = errors.New("session expired")
	ErrAccountDisabled        = errors.New("account is disabled")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ForbiddenError reports a valid session acting outside its scope
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a ForbiddenError with a role-appropriate message
func NewForbiddenError(format string, args ...any) *ForbiddenError {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsForbidden reports whether err is a ForbiddenError
func IsForbidden(err error) bool {
	var f *ForbiddenError
	return errors.As(err, &f)
}
