package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/util"

	"github.com/go-playground/validator/v10"
)

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their json names
// and understands the "ulid" tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ulid", func(fl validator.FieldLevel) bool {
		return util.IsULID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ValidateStruct runs the struct's validate tags. A nil result means the value is valid.
func (v *Validator) ValidateStruct(s interface{}) domain.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{{Field: "body", Code: domain.CodeInvalidFormat, Message: err.Error()}}
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

// ValidateID checks a path or body identifier.
func (v *Validator) ValidateID(field, value string) domain.ValidationErrors {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !util.IsULID(value) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, value)}
	}
	return nil
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "gt", "gte", "lt", "lte", "min", "max":
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeOutOfRange,
			Message: fmt.Sprintf("value must satisfy %s=%s", fe.Tag(), fe.Param()),
			Value:   fe.Value(),
		}
	case "oneof":
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeInvalidFormat,
			Message: fmt.Sprintf("value must be one of: %s", fe.Param()),
			Value:   fe.Value(),
		}
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

// fieldPath drops the root struct name: "AddQuestionRequest.options[0].option_text" -> "options[0].option_text".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
