// Package clock provides a tiny time abstraction.
//
// Code that stamps events or derives time-based codes depends on Clocker
// instead of calling time.Now() directly, so tests can pin the time.
package clock
