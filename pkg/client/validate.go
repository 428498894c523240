package client

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report JSON names so errors line up with what goes over the wire
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	return v
}

func validateParams(operation string, params any) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &ValidationError{Operation: operation, Err: err}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field: fieldPath(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		}
	}
	return &ValidationError{Operation: operation, Fields: fields, Err: err}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// requireText rejects empty path arguments.
func requireText(operation, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Operation: operation,
			Fields:    []FieldError{{Field: field, Tag: "required"}},
		}
	}
	return nil
}

// ValidateParams runs the same checks an operation runs on its params before
// sending them. A failure is a *ValidationError.
func ValidateParams(operation string, params any) error {
	return validateParams(operation, params)
}
