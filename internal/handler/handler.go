package handler

import (
	"academy-quiz/internal/domain"
	"academy-quiz/internal/middleware"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// viewer returns the authenticated caller or an unauthorized error.
func viewer(c *fiber.Ctx) (domain.Viewer, error) {
	v, ok := middleware.ViewerFrom(c)
	if !ok {
		return domain.Viewer{}, domain.NewError(domain.CodeUnauthorized, "authentication required", nil)
	}
	return v, nil
}

// bindBody parses the JSON body into req and runs struct validation.
func bindBody(c *fiber.Ctx, v *validation.Validator, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := v.ValidateStruct(req); len(errs) > 0 {
		return errs
	}
	return nil
}
