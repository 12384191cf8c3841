package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/webotp/internal/pkg/smscode"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps JSON field names to messages.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and the
// "originhost" and "smsbinding" rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerRules(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[fe.Field()] = fe.Translate(v.translator)
	}
	return errV10
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

type rule struct {
	tag     string
	message string
	fn      validator.Func
}

var rules = []rule{
	{
		tag:     "originhost",
		message: "{0} must be a host name without scheme",
		fn: func(fl validator.FieldLevel) bool {
			return smscode.ValidHost(fl.Field().String())
		},
	},
	{
		tag:     "smsbinding",
		message: "{0} must end with a line like \"@example.com #123456\"",
		fn: func(fl validator.FieldLevel) bool {
			_, err := smscode.Parse(fl.Field().String())
			return err == nil
		},
	},
}

func registerRules(validate *validator.Validate, enTrans ut.Translator) error {
	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}

		err := validate.RegisterTranslation(r.tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(r.tag, r.message, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
