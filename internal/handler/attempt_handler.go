package handler

import (
	"academy-quiz/internal/dto"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/service"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AttemptHandler handles attempt ledger HTTP requests
type AttemptHandler struct {
	service   service.AttemptService
	validator *validation.Validator
}

// NewAttemptHandler creates a new AttemptHandler instance
func NewAttemptHandler(service service.AttemptService, v *validation.Validator) *AttemptHandler {
	return &AttemptHandler{
		service:   service,
		validator: v,
	}
}

// StartAttempt godoc
// @Summary Start an attempt
// @Description Opens the caller's next attempt on the quiz
// @Tags attempts
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Success 201 {object} dto.AttemptResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizID}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}

	attempt, err := h.service.StartAttempt(c.UserContext(), v, c.Params("quizID"))
	if err != nil {
		return err
	}
	logger.Get().Info("attempt started",
		zap.String("attempt_id", attempt.ID),
		zap.String("quiz_id", attempt.QuizID),
		zap.Int("attempt_number", attempt.AttemptNumber),
	)
	return c.Status(fiber.StatusCreated).JSON(attempt)
}

// ListAttempts godoc
// @Summary List attempts
// @Description Lists attempts on the quiz ordered by attempt number. Staff may pass learner_id to list another learner's attempts.
// @Tags attempts
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Param learner_id query string false "Learner ID (staff only)"
// @Success 200 {object} dto.AttemptListResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizID}/attempts [get]
func (h *AttemptHandler) ListAttempts(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}

	learnerID := c.Query("learner_id")
	if learnerID == "" {
		learnerID = v.UserID
	}

	list, err := h.service.ListAttempts(c.UserContext(), v, c.Params("quizID"), learnerID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// SubmitAttempt godoc
// @Summary Submit an attempt
// @Description Grades the answers and closes the attempt. Answers are echoed only when the quiz shows results immediately.
// @Tags attempts
// @Accept json
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Param attemptID path string true "Attempt ID"
// @Param request body dto.SubmitAttemptRequest true "Answers"
// @Success 200 {object} dto.SubmitAttemptResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizID}/attempts/{attemptID}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}

	var req dto.SubmitAttemptRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	result, err := h.service.SubmitAttempt(c.UserContext(), v, c.Params("quizID"), c.Params("attemptID"), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetResults godoc
// @Summary Get attempt results
// @Description Returns the graded answers of a submitted attempt when the caller may see them
// @Tags attempts
// @Produce json
// @Param attemptID path string true "Attempt ID"
// @Success 200 {object} dto.AttemptResultResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /attempts/{attemptID}/results [get]
func (h *AttemptHandler) GetResults(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetResults(c.UserContext(), v, c.Params("attemptID"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
