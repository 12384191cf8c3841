// Package hash signs payloads with a keyed hash so that a consumer holding the
// same secret can tell the payload came from this service unmodified.
package hash
