package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/feelmycode/parabole/internal/model"
)

// New creates a validator with the application's custom tags registered
// and field names reported by their JSON name.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// notblank rejects whitespace-only strings; non-strings pass.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("prizetype", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		switch model.PrizeType(fl.Field().String()) {
		case model.PrizeTypeProduct, model.PrizeTypeCoupon:
			return true
		}
		return false
	})

	return v
}

// Describe turns a validation failure into a client-facing message naming
// the first offending field.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("invalid request: %s is required", field(fe))
	case "notblank":
		return fmt.Sprintf("invalid request: %s must not be blank", field(fe))
	case "min", "gte":
		return fmt.Sprintf("invalid request: %s must be at least %s", field(fe), fe.Param())
	case "gt":
		return fmt.Sprintf("invalid request: %s must be greater than %s", field(fe), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("invalid request: %s must be at most %s", field(fe), fe.Param())
	case "lt":
		return fmt.Sprintf("invalid request: %s must be less than %s", field(fe), fe.Param())
	case "oneof":
		return fmt.Sprintf("invalid request: %s must be one of [%s]", field(fe), fe.Param())
	case "datetime":
		return fmt.Sprintf("invalid request: %s must use format %s", field(fe), fe.Param())
	default:
		return fmt.Sprintf("invalid request: %s is invalid", field(fe))
	}
}

// field returns the failing field path without the top-level struct name,
// e.g. "groups[0].cartItemIds".
func field(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}
