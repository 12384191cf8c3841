// Package webotp bridges a platform one-time-code credential API (WebOTP) to
// an application event.
//
// A Bridge owns a single in-flight credential request. Start issues a request
// scoped to SMS-delivered codes and cancels the one it supersedes; Stop cancels
// the outstanding request. When a code arrives it is dispatched, unmasked, as a
// "web-otp-autofill" event; diagnostic logs only ever see the masked form
// produced by SafeMask.
//
// The platform and the event sink are injected, so the same Bridge runs in the
// browser (see internal/browser) and natively against a simulated platform.
package webotp
