package handler

import (
	"academy-quiz/internal/domain"
	"academy-quiz/internal/middleware"
	"academy-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Routes bundles what RegisterRoutes mounts.
type Routes struct {
	Tokens     service.TokenValidator
	Validation *middleware.ValidationMiddleware
	Quizzes    *QuizHandler
	Attempts   *AttemptHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the health probe and the authenticated /api group.
func RegisterRoutes(app *fiber.App, r Routes) {
	if r.Health != nil {
		app.Get("/healthz", r.Health.Check)
	}

	staff := middleware.RequireRole(domain.RoleTeacher, domain.RoleAdmin)
	ids := r.Validation.ValidateIDParams

	api := app.Group("/api", middleware.Protected(r.Tokens))

	// Quiz definitions
	api.Post("/quizzes", staff, r.Quizzes.CreateQuiz)
	api.Get("/quizzes/:quizID", ids("quizID"), r.Quizzes.GetQuiz)
	api.Post("/quizzes/:quizID/questions", staff, ids("quizID"), r.Quizzes.AddQuestion)
	api.Delete("/quizzes/:quizID/questions/:questionID", staff, ids("quizID", "questionID"), r.Quizzes.RemoveQuestion)

	// Attempts
	api.Post("/quizzes/:quizID/attempts", ids("quizID"), r.Attempts.StartAttempt)
	api.Get("/quizzes/:quizID/attempts", ids("quizID"), r.Attempts.ListAttempts)
	api.Post("/quizzes/:quizID/attempts/:attemptID/submit", ids("quizID", "attemptID"), r.Attempts.SubmitAttempt)
	api.Get("/attempts/:attemptID/results", ids("attemptID"), r.Attempts.GetResults)
}
