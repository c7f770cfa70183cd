package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"todo-app/internal/errs"
)

const maxTagNameLength = 50

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for empty or reserved tag names.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("tagname", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= maxTagNameLength
	})
	return v
}

// validateInput checks the struct tags of input plus any extra errors the
// caller found, and reports every violation in one invalid error.
func validateInput(op string, input interface{}, extra ...error) error {
	var result *multierror.Error
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errs.Internal(op, err)
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fieldError(fe))
		}
	}
	for _, err := range extra {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result.ErrorOrNil() == nil {
		return nil
	}
	result.ErrorFormat = joinErrors
	return errs.Invalid(op, result)
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Errorf("%s: is required", fe.Field())
	case "max":
		return fmt.Errorf("%s: must be at most %s characters", fe.Field(), fe.Param())
	case "tagname":
		return fmt.Errorf("%s: must be at most %d characters", fe.Field(), maxTagNameLength)
	case "email":
		return fmt.Errorf("%s: must be a valid email address", fe.Field())
	case "hexcolor", "len":
		return fmt.Errorf("%s: must be a hex color like #1a2b3c", fe.Field())
	}
	return fmt.Errorf("%s: is invalid", fe.Field())
}

func joinErrors(list []error) string {
	msgs := make([]string, 0, len(list))
	for _, err := range list {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
