package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// "variant" accepts any name triest.ParseVariant understands
	_ = validate.RegisterValidation("variant", func(fl validator.FieldLevel) bool {
		_, err := triest.ParseVariant(fl.Field().String())
		return err == nil
	})
}

// Struct validates v against its `validate` struct tags and returns the
// first failure in a readable form.
func Struct(v any) error {
	if v == nil {
		return errors.New("config cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "variant":
			return fmt.Errorf("%s: unknown estimator variant %q", field, e.Value())
		case "hostname_port":
			return fmt.Errorf("%s: must be host:port, got %q", field, e.Value())
		case "url":
			return fmt.Errorf("%s: must be a URL, got %q", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
