package errors

import (
	"errors"
	"fmt"
)

// Common error types for the billing console
var (
	// Session errors
	ErrNoCredentials        = errors.New("no access token available")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAuthentication       = errors.New("login rejected")
	ErrCorruptSession       = errors.New("corrupt session record")

	// General errors
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrNotFound             = errors.New("not found")
)

// AuthenticationError is returned when the login endpoint answers with a non-success status.
type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("login rejected: status %d", e.StatusCode)
	}
	return fmt.Sprintf("login rejected: status %d: %s", e.StatusCode, e.Message)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// TransportError is a network level failure that happened before any response was received.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteRejection is a non-2xx, non-401 answer from the remote API once a caller decides to treat it as an error.
type RemoteRejection struct {
	StatusCode int
	Message    string
}

func (e *RemoteRejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote rejected request: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote rejected request: status %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteRejection) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

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

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
