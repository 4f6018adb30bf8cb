package middleware_test

import (
	"net/http/httptest"
	"testing"

	"academy-quiz/internal/middleware"
	"academy-quiz/internal/util"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIDParams(t *testing.T) {
	vm := middleware.NewValidationMiddleware(validation.NewValidator())
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/quizzes/:quizID/attempts/:attemptID", vm.ValidateIDParams("quizID", "attemptID"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	good := util.NewULID()
	tests := []struct {
		name string
		path string
		want int
	}{
		{"both valid", "/quizzes/" + good + "/attempts/" + good, fiber.StatusNoContent},
		{"bad quiz id", "/quizzes/abc/attempts/" + good, fiber.StatusBadRequest},
		{"bad attempt id", "/quizzes/" + good + "/attempts/xyz", fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
