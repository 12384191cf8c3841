package webotp

import (
	"context"
	"time"
)

const (
	// EventAutofill is the application event carrying a retrieved code.
	EventAutofill = "web-otp-autofill"

	// TransportSMS restricts a credential request to SMS-delivered codes.
	TransportSMS = "sms"

	// LogPrefix tags every diagnostic record written by a Bridge.
	LogPrefix = "[WebOTP]"
)

// Capabilities describes what the hosting platform offers. It is detected
// once when a Bridge is built.
type Capabilities struct {
	// OTPCredential reports whether the one-time-password credential type exists.
	OTPCredential bool `json:"otp_credential"`
	// CredentialsAPI reports whether the generic credential retrieval function exists.
	CredentialsAPI bool `json:"credentials_api"`
	// SecureContext reports whether the page runs on a secure origin.
	SecureContext bool `json:"secure_context"`
	// Cancellation reports whether requests can be aborted.
	Cancellation bool `json:"cancellation"`
	// Protocol is the page protocol, e.g. "https:".
	Protocol string `json:"protocol,omitempty"`
	// Host is the page host including port.
	Host string `json:"host,omitempty"`
}

// Request configures a single credential retrieval.
type Request struct {
	// Transports lists the delivery transports accepted, normally ["sms"].
	Transports []string
}

// Credential is the result of a successful retrieval.
type Credential struct {
	// Code is the raw one-time code.
	Code string
	// Transport is the transport the code arrived on, when known.
	Transport string
}

// Platform is the credential capability the Bridge drives.
//
// GetCredential blocks until the platform resolves or rejects the request.
// Cancelling ctx asks the platform to abort; it may still return a result.
type Platform interface {
	Capabilities() Capabilities
	GetCredential(ctx context.Context, req Request) (Credential, error)
}

// Event is the notification dispatched for every retrieved code.
type Event struct {
	// Name is the event name, EventAutofill unless overridden.
	Name string `json:"name"`
	// OTP is the raw, unmasked code.
	OTP string `json:"otp"`
	// At is when the code was received.
	At time.Time `json:"at"`
}

// Dispatcher delivers events to the application.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt Event) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, evt Event) error

// Dispatch calls f(ctx, evt).
func (f DispatcherFunc) Dispatch(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}
