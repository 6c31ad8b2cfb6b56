package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gaborage/go-scriptkit/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report koanf paths ("http.timeout") instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks cfg against its struct tags and returns ValidationErrors
// listing every invalid field
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return toValidationErrors(fieldErrs)
		}
		return err
	}
	return nil
}

func toValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		// Drop the root struct name
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}

		switch fe.Tag() {
		case "required", "required_if":
			out = append(out, NewMissingFieldError(field, validation.EnvVar(field), field))
		case "oneof":
			out = append(out, NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param())))
		default:
			out = append(out, NewInvalidFieldError(field, getErrorMessage(fe), nil))
		}
	}
	return out
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
