package middleware

import (
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: v}
}

// ValidateIDParams rejects the request unless every named route parameter is a ULID.
func (vm *ValidationMiddleware) ValidateIDParams(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range params {
			if errs := vm.validator.ValidateID(p, c.Params(p)); len(errs) > 0 {
				return errs // This will be handled by ErrorHandler middleware
			}
		}
		return c.Next()
	}
}
