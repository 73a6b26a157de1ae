package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance reporting YAML key names
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ConfigValidator collects every validation problem of a configuration
// rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config section for error messages
}

// NewConfigValidator creates a validator that prefixes errors with name.
func NewConfigValidator(name string) *ConfigValidator {
	return &ConfigValidator{name: name}
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: required field is empty", cv.name, field))
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %q must be one of %v", cv.name, field, value, allowed))
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Struct runs the struct-tag rules on v and records each violation.
func (cv *ConfigValidator) Struct(v any) *ConfigValidator {
	err := validate.Struct(v)
	if err == nil {
		return cv
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		cv.errors = append(cv.errors, fmt.Errorf("%s: %w", cv.name, err))
		return cv
	}
	for _, e := range verrs {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s", cv.name, describe(e)))
	}
	return cv
}

// HasErrors returns true if any validation errors occurred.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns all validation errors.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns every collected error joined, or nil.
func (cv *ConfigValidator) Validate() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalid}, cv.errors...)...)
}

// describe converts one validator error to a readable message
func describe(e validator.FieldError) string {
	// Drop the root struct name: "Config.graph.nodes" -> "graph.nodes"
	field := e.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min":
		return fmt.Sprintf("%s: must have at least %s entries", field, param)
	case "max":
		return fmt.Sprintf("%s: must not exceed %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s: value %q must be one of [%s]", field, e.Value(), param)
	case "hostname_port":
		return fmt.Sprintf("%s: %q is not a host:port address", field, e.Value())
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
}
