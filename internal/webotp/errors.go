package webotp

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported is returned by New when the platform has no one-time
	// password credential type.
	ErrUnsupported = errors.New("webotp: OTPCredential not supported")

	// ErrNilPlatform is returned by New when no platform is given.
	ErrNilPlatform = errors.New("webotp: platform is required")

	// ErrNilDispatcher is returned by New when no dispatcher is given.
	ErrNilDispatcher = errors.New("webotp: dispatcher is required")
)

// Names used by platforms when rejecting a request. They follow the
// DOMException names a browser reports.
const (
	ErrNameAbort        = "AbortError"
	ErrNameNotAllowed   = "NotAllowedError"
	ErrNameInvalidState = "InvalidStateError"
	ErrNameNotSupported = "NotSupportedError"
	ErrNameTimeout      = "TimeoutError"
	ErrNameUnknown      = "UnknownError"
)

// CredentialError is a rejection reported by the platform.
type CredentialError struct {
	Name    string
	Message string
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

// Is matches another CredentialError with the same name.
func (e *CredentialError) Is(target error) bool {
	var t *CredentialError
	if !errors.As(target, &t) {
		return false
	}
	return t.Name == e.Name
}

// NewCredentialError builds a CredentialError.
func NewCredentialError(name, message string) *CredentialError {
	return &CredentialError{Name: name, Message: message}
}

// describe extracts the category and message logged for a failed request.
func describe(err error) (name, message string) {
	var cerr *CredentialError
	switch {
	case errors.As(err, &cerr):
		return cerr.Name, cerr.Message
	case errors.Is(err, context.Canceled):
		return ErrNameAbort, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return ErrNameTimeout, err.Error()
	default:
		return ErrNameUnknown, err.Error()
	}
}
