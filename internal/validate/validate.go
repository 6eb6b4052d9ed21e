// Package validate turns malformed input into per-field error messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tasklist/tasklist-api/internal/model"
)

// Message is the envelope message for every validation failure.
const Message = "Validation errors occurred"

// Errors maps a wire field name to its messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field already has a message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Err returns nil when no field failed, otherwise an *Error.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &Error{Fields: e}
}

// Error is a ValidationFailure. It is raised before anything touches the store.
type Error struct {
	Fields Errors
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Field builds a single-field *Error.
func Field(field, msg string) error {
	return &Error{Fields: Errors{field: {msg}}}
}

// IsValidation reports whether err carries field-level validation detail.
func IsValidation(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(val, "status", func(fl validator.FieldLevel) bool {
		_, err := model.ParseStatus(fl.Field().String())
		return err == nil
	})
	mustRegister(val, "priority", func(fl validator.FieldLevel) bool {
		_, err := model.ParsePriority(fl.Field().String())
		return err == nil
	})
	mustRegister(val, "date", func(fl validator.FieldLevel) bool {
		_, err := model.ParseDate(fl.Field().String())
		return err == nil
	})

	return val
}

func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %q validation: %v", tag, err))
	}
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out.Err()
}

// Label renders a wire field name the way messages refer to it.
func Label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "uuid":
		return fmt.Sprintf("The %s field must be a valid UUID.", label)
	case "date":
		return fmt.Sprintf("The %s field must be a valid date.", label)
	case "status", "priority", "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	}
	return fmt.Sprintf("The %s field is invalid.", label)
}
