package errors

import (
	"errors"
	"fmt"
)

// Common error types for the booking site
var (
	// Form errors
	ErrValidation       = errors.New("validation failed")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Auth backend errors
	ErrRemote    = errors.New("auth backend rejected the request")
	ErrTransport = errors.New("auth backend unreachable")

	// Booking errors
	ErrInvalidTransition = errors.New("invalid booking transition")
	ErrBookingClosed     = errors.New("booking closed")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers only import this package
func New(text string) error {
	return errors.New(text)
}
