// Package otp generates time-based one-time passwords (TOTP).
//
// The simulator uses it as the code source for the SMS messages it delivers,
// so a test harness holding the same secret can predict and verify the code
// that ends up in the autofill event.
package otp
