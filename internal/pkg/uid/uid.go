// Package uid generates identifiers for requests and events.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
