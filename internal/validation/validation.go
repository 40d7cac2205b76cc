// Package validation checks request schemas before they reach the service layer.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError names one field and the constraint it violated.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Param      string `json:"param,omitempty"`
	Message    string `json:"message"`
}

// ValidationError carries every failing field of a request, in declaration order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed with constraint.
func (e *ValidationError) Has(field, constraint string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Constraint == constraint {
			return true
		}
	}
	return false
}

// validator caches struct metadata; one instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// absent fails on any value; pair it with omitnil so only a missing field passes.
	_ = v.RegisterValidation("absent", func(validator.FieldLevel) bool { return false })
	return v
}

// Struct validates s against its `validate` tags.
// It returns nil or a *ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) FieldError {
	f := FieldError{Field: fe.Field(), Constraint: fe.Tag(), Param: fe.Param()}

	switch fe.Tag() {
	case "required":
		f.Message = "field is required"
	case "min":
		f.Message = fmt.Sprintf("must be at least %s", fe.Param())
		if fe.Kind() == reflect.String {
			f.Message += " characters"
		}
	case "max":
		f.Message = fmt.Sprintf("must be at most %s", fe.Param())
		if fe.Kind() == reflect.String {
			f.Message += " characters"
		}
	case "gt":
		f.Message = fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		f.Constraint = "date"
		f.Message = "must be a date in YYYY-MM-DD format"
	case "absent":
		f.Constraint = "server_assigned"
		f.Param = ""
		f.Message = "field is assigned by the server"
	default:
		f.Message = "failed " + fe.Tag() + " check"
	}

	return f
}

// TypeMismatch reports a field whose raw value has the wrong type.
func TypeMismatch(field, want string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{
		Field:      field,
		Constraint: "type",
		Param:      want,
		Message:    "must be of type " + want,
	}}}
}

// FromDecodeError turns JSON decoding failures caused by field content into a
// *ValidationError. Syntax errors and other failures are returned as nil.
func FromDecodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return TypeMismatch(typeErr.Field, typeErr.Type.String())
	}

	// encoding/json reports DisallowUnknownFields violations only as text.
	if rest, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		name, uerr := strconv.Unquote(rest)
		if uerr != nil {
			name = rest
		}
		return &ValidationError{Fields: []FieldError{{
			Field:      name,
			Constraint: "unknown",
			Message:    "field is not accepted",
		}}}
	}

	return nil
}
