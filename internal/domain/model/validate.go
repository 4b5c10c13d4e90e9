package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata; one instance is shared

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so errors match what the caller sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes a single rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Rule   string `json:"rule"`
	Param  string `json:"param,omitempty"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return strings.Join(parts, "; ")
}

// Validate checks numeric ranges and categorical levels.
// It returns a *ValidationError when any field is rejected.
func (f StudentFeatures) Validate() error {
	return Check(f)
}

// Check validates any struct carrying validate tags with the shared validator.
// Field names are reported by their json tag. Rejections come back as a
// *ValidationError listing every failing field.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:  fe.Field(),
			Rule:   fe.Tag(),
			Param:  fe.Param(),
			Value:  fe.Value(),
			Reason: reason(fe),
		})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
