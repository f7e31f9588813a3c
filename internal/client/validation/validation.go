// Package validation checks form input before it leaves the process.
// Rules are declared as struct tags on the models; this package turns
// validator failures into per-field messages the views can show.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// ErrValidation is wrapped by every *Error.
var ErrValidation = errors.New("validation failed")

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages overrides the generic text for a field and rule.
var messages = map[string]string{
	"username.min":              "username must be at least 2 characters",
	"password.min":              "password must be at least 5 characters",
	"email.min":                 "email is required",
	"firstName.min":             "first name is required",
	"lastName.min":              "last name is required",
	"teamId.required_without":   "join an existing team or name a new one",
	"teamName.required_without": "join an existing team or name a new one",
	"teamId.excluded_with":      "join an existing team or create one, not both",
	"teamName.excluded_with":    "join an existing team or create one, not both",
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// Error lists every failed rule of one input, in declaration order.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return ErrValidation }

// Message returns the first message recorded for field, or "".
func (e *Error) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// ValidateLogin checks the login form.
func ValidateLogin(in models.LoginInput) error {
	return Validate(in)
}

// ValidateRegister checks the registration form.
func ValidateRegister(in models.RegisterInput) error {
	return Validate(in)
}

// Validate validates any tagged struct and returns *Error on failure.
func Validate(in any) error {
	err := defaultValidator.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.ActualTag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.ActualTag()]; ok {
		return m
	}
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
