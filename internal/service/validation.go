package service

import (
	"aptitude_backend/internal/util"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so messages match the payload.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRecord checks the `validate` tags of a record about to be written and
// reports the first violation as a *util.ValidationError.
func validateRecord(record interface{}) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return util.NewValidationError(fe.Field(), reasonFor(fe))
	}
	return util.NewValidationError("", err.Error())
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}

// validateOptions applies the canonical-options rule to a normalized list.
func validateOptions(options []string) error {
	if len(options) == 0 {
		return util.NewValidationError("options", "must contain at least 1 item(s)")
	}
	for i, o := range options {
		if o == "" {
			return util.NewValidationError(fmt.Sprintf("options[%d]", i), "is required")
		}
	}
	return nil
}

type stringField struct {
	name string
	src  *string
	dst  **string
}

// copyNonEmpty moves every provided field into its destination, rejecting
// provided-but-empty values of required fields.
func copyNonEmpty(fields []stringField) error {
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		if *f.src == "" {
			return util.NewValidationError(f.name, "must not be empty")
		}
		*f.dst = f.src
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
