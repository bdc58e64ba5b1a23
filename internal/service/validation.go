package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

// newValidator reports fields by their json names. notblank rejects
// whitespace-only strings.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates in and converts failures into a *ValidationError.
func check(message string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	out := &ValidationError{Message: message, Errors: make(map[string][]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors[fe.Field()] = append(out.Errors[fe.Field()], describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		if fe.Param() == "1" {
			return fmt.Sprintf("The %s field must not be empty.", field)
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field may not be greater than %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
