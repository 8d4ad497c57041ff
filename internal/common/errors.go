// Package common defines shared sentinel errors used across the client and
// the mirror server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrOperationFailed = errors.New("operation failed")
	ErrForbidden       = errors.New("not allowed to modify this record")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Validation errors. ErrDuplicatePassword and ErrDuplicateEmail both
	// match ErrValidation.
	ErrValidation        = errors.New("validation error")
	ErrDuplicatePassword = &ValidationError{Problems: []string{"a user with this password already exists"}}
	ErrDuplicateEmail    = &ValidationError{Problems: []string{"a user with this email already exists"}}

	// Data exchange errors.
	ErrInvalidBundle = errors.New("invalid data bundle")
	ErrSerialization = errors.New("stored value cannot be decoded")

	// Sync errors. Never shown to the user.
	ErrSyncUnavailable = errors.New("remote mirror unavailable")
)

// ValidationError reports user input that breaks a business rule. Problems
// holds one user-facing message per violated rule.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns nil when problems is empty.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t == e
}
