package service

import (
	"errors"
	"fmt"
)

// Error classes. Handlers map them to HTTP statuses; anything else coming out
// of a service is a storage failure.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = fmt.Errorf("%w: user with this email already exists", ErrConflict)
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrAuthenticationFailed = fmt.Errorf("%w: invalid email or password", ErrAuthentication)
	ErrSessionNotFound      = fmt.Errorf("%w: session not found", ErrNotFound)
	ErrConnectionExists     = fmt.Errorf("%w: connection already exists between these users", ErrConflict)
	ErrConnectionNotFound   = fmt.Errorf("%w: connection request not found", ErrNotFound)
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
