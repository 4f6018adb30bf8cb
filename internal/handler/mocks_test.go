package handler_test

import (
	"context"
	"time"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/handler"
	"academy-quiz/internal/middleware"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	quizID     = "01HZY8Q7T2D3N4P5R6S7V8W9XA"
	attemptID  = "01HZY8Q7T2D3N4P5R6S7V8W9XB"
	questionID = "01HZY8Q7T2D3N4P5R6S7V8W9XC"
)

// --- Manual Mocks ---

// MockQuizService
type MockQuizService struct {
	GetQuizFunc        func(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.QuizResponse, error)
	CreateQuizFunc     func(ctx context.Context, req *dto.CreateQuizRequest) (*dto.QuizResponse, error)
	AddQuestionFunc    func(ctx context.Context, quizID string, req *dto.AddQuestionRequest) (*dto.QuestionResponse, error)
	RemoveQuestionFunc func(ctx context.Context, quizID, questionID string) error
}

func (m *MockQuizService) GetQuiz(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, viewer, quizID)
	}
	panic("MockQuizService.GetQuizFunc not implemented")
}
func (m *MockQuizService) CreateQuiz(ctx context.Context, req *dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, req)
	}
	panic("MockQuizService.CreateQuizFunc not implemented")
}
func (m *MockQuizService) AddQuestion(ctx context.Context, quizID string, req *dto.AddQuestionRequest) (*dto.QuestionResponse, error) {
	if m.AddQuestionFunc != nil {
		return m.AddQuestionFunc(ctx, quizID, req)
	}
	panic("MockQuizService.AddQuestionFunc not implemented")
}
func (m *MockQuizService) RemoveQuestion(ctx context.Context, quizID, questionID string) error {
	if m.RemoveQuestionFunc != nil {
		return m.RemoveQuestionFunc(ctx, quizID, questionID)
	}
	panic("MockQuizService.RemoveQuestionFunc not implemented")
}

// MockAttemptService
type MockAttemptService struct {
	StartAttemptFunc  func(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.AttemptResponse, error)
	ListAttemptsFunc  func(ctx context.Context, viewer domain.Viewer, quizID, learnerID string) (*dto.AttemptListResponse, error)
	SubmitAttemptFunc func(ctx context.Context, viewer domain.Viewer, quizID, attemptID string, answers []domain.SubmittedAnswer) (*dto.SubmitAttemptResponse, error)
	GetResultsFunc    func(ctx context.Context, viewer domain.Viewer, attemptID string) (*dto.AttemptResultResponse, error)
}

func (m *MockAttemptService) StartAttempt(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.AttemptResponse, error) {
	if m.StartAttemptFunc != nil {
		return m.StartAttemptFunc(ctx, viewer, quizID)
	}
	panic("MockAttemptService.StartAttemptFunc not implemented")
}
func (m *MockAttemptService) ListAttempts(ctx context.Context, viewer domain.Viewer, quizID, learnerID string) (*dto.AttemptListResponse, error) {
	if m.ListAttemptsFunc != nil {
		return m.ListAttemptsFunc(ctx, viewer, quizID, learnerID)
	}
	panic("MockAttemptService.ListAttemptsFunc not implemented")
}
func (m *MockAttemptService) SubmitAttempt(ctx context.Context, viewer domain.Viewer, quizID, attemptID string, answers []domain.SubmittedAnswer) (*dto.SubmitAttemptResponse, error) {
	if m.SubmitAttemptFunc != nil {
		return m.SubmitAttemptFunc(ctx, viewer, quizID, attemptID, answers)
	}
	panic("MockAttemptService.SubmitAttemptFunc not implemented")
}
func (m *MockAttemptService) GetResults(ctx context.Context, viewer domain.Viewer, attemptID string) (*dto.AttemptResultResponse, error) {
	if m.GetResultsFunc != nil {
		return m.GetResultsFunc(ctx, viewer, attemptID)
	}
	panic("MockAttemptService.GetResultsFunc not implemented")
}

// stubTokens accepts learner-token and teacher-token.
type stubTokens struct{}

func (stubTokens) ValidateAccessToken(_ context.Context, token string) (*dto.AuthClaims, error) {
	switch token {
	case "learner-token":
		return &dto.AuthClaims{UserID: "learner-1", Role: "learner", TokenType: dto.AccessTokenType}, nil
	case "teacher-token":
		return &dto.AuthClaims{UserID: "teacher-1", Role: "teacher", TokenType: dto.AccessTokenType}, nil
	default:
		return nil, domain.NewError(domain.CodeUnauthorized, "bad token", nil)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubCache struct{ pingErr error }

func (s stubCache) Get(context.Context, string) (string, error) { return "", domain.ErrCacheMiss }
func (s stubCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}
func (s stubCache) Delete(context.Context, string) error { return nil }
func (s stubCache) Ping(context.Context) error           { return s.pingErr }

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

// as wraps h so it runs with the given authenticated caller.
func as(userID string, role domain.Role, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		c.Locals(middleware.RoleKey, role)
		return h(c)
	}
}

func newRoutedApp(quizzes *MockQuizService, attempts *MockAttemptService, health *handler.HealthHandler) *fiber.App {
	app := newTestApp()
	v := validation.NewValidator()
	handler.RegisterRoutes(app, handler.Routes{
		Tokens:     stubTokens{},
		Validation: middleware.NewValidationMiddleware(v),
		Quizzes:    handler.NewQuizHandler(quizzes, v),
		Attempts:   handler.NewAttemptHandler(attempts, v),
		Health:     health,
	})
	return app
}
