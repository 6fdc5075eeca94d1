package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Register adds the application's tags to v and makes field errors use the
// JSON name of the field. Tags:
//
//	mailbox  a bare email address accepted by EmailValidator
//	passwd   a password accepted by PasswordValidator
func Register(v *validator.Validate) error {
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

	if err := v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return EmailValidator(fl.Field().String()) == nil
	}); err != nil {
		return err
	}

	return v.RegisterValidation("passwd", func(fl validator.FieldLevel) bool {
		return PasswordValidator(fl.Field().String()) == nil
	})
}

// FieldErrors turns validation errors into messages keyed by field name.
// ok is false when err isn't a validation error.
func FieldErrors(err error) (fields map[string][]string, ok bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	fields = make(map[string][]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}

	return fields, true
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "mailbox", "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "passwd":
		return fmt.Sprintf("The %s field must be between %d and %d characters.", field, PasswordMinLength, PasswordMaxLength)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", strings.TrimSuffix(field, " confirmation"))
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
