// Package validator validates API request structs.
//
// Handlers depend on the Validator interface. The go-playground/validator v10
// implementation reports failures keyed by JSON field name, with English
// messages and the origin-bound SMS rules registered.
package validator

// Validator checks a struct and returns a field-keyed error on failure.
type Validator interface {
	Validate(data any) error
}
