// Package validate runs client-side pre-validation on action inputs before
// any network call. Failures short-circuit the action and surface as a
// per-field error map bound to form state, never through the notification
// side-channel.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vendora/storefront-go/domain"
)

var v = validator.New()

// FieldErrors maps field names (lowercased) to human-readable messages.
type FieldErrors map[string]string

// Error satisfies the error interface so a failed pre-check can travel the
// normal action error path. It always wraps domain.ErrValidation.
func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for field, msg := range fe {
		msgs = append(msgs, field+": "+msg)
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) Unwrap() error { return domain.ErrValidation }

// Struct validates i against its `validate` tags. On failure it returns a
// FieldErrors combining every violation.
func Struct(i any) error {
	err := v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields := make(FieldErrors, len(ve))
	for _, fe := range ve {
		fields[strings.ToLower(fe.Field())] = fieldError(fe)
	}
	return fields
}

// Fields extracts the per-field map from an action error, or nil when the
// error was not a pre-validation failure.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
