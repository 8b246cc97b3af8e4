package domain

import (
	"errors"
	"fmt"
)

// Closed error taxonomy for auth operations. Infrastructure normalizes
// provider failures into these at the boundary; callers never string-match
// error messages.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many failed attempts")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrAccountSuspended   = errors.New("account suspended")
)

// ValidationError reports a single client-side field rule violation. It
// never reaches the external service.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation constructs a field-level validation error.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ServiceError wraps an opaque failure from the auth provider or a backing
// store. The message is safe to surface; the cause is for logs only.
type ServiceError struct {
	Op    string
	Cause error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("auth service: %s: %v", e.Op, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// Servicef wraps err as a ServiceError for the given operation. Errors that
// already belong to the taxonomy pass through untouched so callers can match
// them with errors.Is.
func Servicef(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrValidation, ErrDuplicateEmail, ErrUsernameTaken, ErrInvalidCredentials,
		ErrRateLimited, ErrSessionExpired, ErrNotAuthenticated,
		ErrUserNotFound, ErrProfileNotFound, ErrAccountSuspended,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &ServiceError{Op: op, Cause: err}
}
