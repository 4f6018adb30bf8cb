package handler

import (
	"academy-quiz/internal/dto"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/service"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz definition HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService, v *validation.Validator) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: v,
	}
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Returns the quiz with ordered questions. Learners must be enrolled in the quiz program and never see the answer key.
// @Tags quiz
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizID} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}

	quiz, err := h.service.GetQuiz(c.UserContext(), v, c.Params("quizID"))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Creates an empty quiz under a program. Staff only.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	quiz, err := h.service.CreateQuiz(c.UserContext(), &req)
	if err != nil {
		return err
	}
	logger.Get().Info("quiz created", zap.String("quiz_id", quiz.ID), zap.String("program_id", quiz.ProgramID))
	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// AddQuestion godoc
// @Summary Add a question
// @Description Appends a question and its options to the quiz. Staff only.
// @Tags quiz
// @Accept json
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Param request body dto.AddQuestionRequest true "Question"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizID}/questions [post]
func (h *QuizHandler) AddQuestion(c *fiber.Ctx) error {
	var req dto.AddQuestionRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	question, err := h.service.AddQuestion(c.UserContext(), c.Params("quizID"), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// RemoveQuestion godoc
// @Summary Remove a question
// @Description Deletes a question and renumbers the rest. Staff only.
// @Tags quiz
// @Param quizID path string true "Quiz ID"
// @Param questionID path string true "Question ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizID}/questions/{questionID} [delete]
func (h *QuizHandler) RemoveQuestion(c *fiber.Ctx) error {
	if err := h.service.RemoveQuestion(c.UserContext(), c.Params("quizID"), c.Params("questionID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
