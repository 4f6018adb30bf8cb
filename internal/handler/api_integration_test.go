package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"academy-quiz/internal/config"
	"academy-quiz/internal/database"
	"academy-quiz/internal/domain"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/handler"
	"academy-quiz/internal/metrics"
	"academy-quiz/internal/middleware"
	"academy-quiz/internal/repository"
	"academy-quiz/internal/service"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "integration-secret"

type apiFixture struct {
	app         *fiber.App
	enrollments repository.EnrollmentWriter
}

// newAPI wires the real stack over a private in-memory SQLite database.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", time.Now().UnixNano())
	db, err := database.Connect(ctx, config.DBConfig{Driver: config.DriverSQLite}, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(ctx, db, config.DriverSQLite, database.Up))

	m := metrics.NewMetrics(prometheus.NewRegistry())
	quizRepo := repository.NewSQLXQuizRepository(db)
	tx := repository.NewTransactionManagerAdapter(db)
	reader := service.NewQuizDefinitionCache(quizRepo, nil, 0, m)
	gate := service.NewEnrollmentGate(reader, repository.NewSQLXEnrollmentRepository(db))

	tokens, err := service.NewTokenValidator(config.JWTConfig{SecretKey: testJWTSecret})
	require.NoError(t, err)

	v := validation.NewValidator()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger(m))
	handler.RegisterRoutes(app, handler.Routes{
		Tokens:     tokens,
		Validation: middleware.NewValidationMiddleware(v),
		Quizzes:    handler.NewQuizHandler(service.NewQuizService(tx, quizRepo, reader, gate), v),
		Attempts:   handler.NewAttemptHandler(service.NewAttemptService(tx, quizRepo, reader, repository.NewSQLXAttemptRepository(db), gate, m), v),
		Health:     handler.NewHealthHandler(db, nil),
	})
	return &apiFixture{app: app, enrollments: repository.NewSQLXEnrollmentWriter(db)}
}

func signToken(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	claims := dto.AuthClaims{
		UserID:    userID,
		Role:      string(role),
		TokenType: dto.AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (f *apiFixture) call(t *testing.T, token, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != fiber.StatusNoContent {
		decode(t, resp.Body, out)
	}
	return resp.StatusCode
}

func TestAPI_AttemptWorkflow(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()
	teacher := signToken(t, "teacher-1", domain.RoleTeacher)
	learner := signToken(t, "learner-1", domain.RoleLearner)
	outsider := signToken(t, "learner-2", domain.RoleLearner)

	// Author a quiz: MC worth 3, TF worth 2, two attempts, pass at 60.
	var quiz dto.QuizResponse
	require.Equal(t, fiber.StatusCreated, api.call(t, teacher, "POST", "/api/quizzes", dto.CreateQuizRequest{
		ProgramID: "prog-1", Title: "Greetings", PassingScore: 60, MaxAttempts: 2, ShowResultsImmediately: true,
	}, &quiz))

	var mc, tf dto.QuestionResponse
	require.Equal(t, fiber.StatusCreated, api.call(t, teacher, "POST", "/api/quizzes/"+quiz.ID+"/questions", dto.AddQuestionRequest{
		Type: "multiple_choice", QuestionText: "Hello in French?", Points: 3,
		Options: []dto.OptionRequest{{OptionText: "Hola"}, {OptionText: "Bonjour", IsCorrect: true}, {OptionText: "Ciao"}},
	}, &mc))
	require.Equal(t, fiber.StatusCreated, api.call(t, teacher, "POST", "/api/quizzes/"+quiz.ID+"/questions", dto.AddQuestionRequest{
		Type: "true_false", QuestionText: "Ciao is Spanish", Points: 2,
		Options: []dto.OptionRequest{{OptionText: "True"}, {OptionText: "False", IsCorrect: true}},
	}, &tf))
	assert.Equal(t, 1, mc.Order)
	assert.Equal(t, 2, tf.Order)

	// Learners outside the program are turned away.
	assert.Equal(t, fiber.StatusForbidden, api.call(t, learner, "GET", "/api/quizzes/"+quiz.ID, nil, nil))

	_, err := api.enrollments.Enroll(ctx, "learner-1", "prog-1", "active")
	require.NoError(t, err)

	var preview dto.QuizResponse
	require.Equal(t, fiber.StatusOK, api.call(t, learner, "GET", "/api/quizzes/"+quiz.ID, nil, &preview))
	assert.Equal(t, 2, preview.TotalQuestions)
	for _, q := range preview.Questions {
		for _, o := range q.Options {
			assert.Nil(t, o.IsCorrect, "answer key is hidden from learners")
		}
	}

	// First attempt: MC right, TF wrong, 3/5 = 60% passes.
	var first dto.AttemptResponse
	require.Equal(t, fiber.StatusCreated, api.call(t, learner, "POST", "/api/quizzes/"+quiz.ID+"/attempts", nil, &first))
	assert.Equal(t, 1, first.AttemptNumber)
	assert.Equal(t, 5, first.MaxPossibleScore)

	answers := dto.SubmitAttemptRequest{Answers: []dto.SubmittedAnswerRequest{
		{QuestionID: mc.ID, SelectedOptionID: &mc.Options[1].ID},
		{QuestionID: tf.ID, SelectedOptionID: &tf.Options[0].ID},
	}}
	submitPath := "/api/quizzes/" + quiz.ID + "/attempts/" + first.ID + "/submit"

	var submitted dto.SubmitAttemptResponse
	require.Equal(t, fiber.StatusOK, api.call(t, learner, "POST", submitPath, answers, &submitted))
	require.NotNil(t, submitted.Attempt.TotalScore)
	assert.Equal(t, 3, *submitted.Attempt.TotalScore)
	assert.Equal(t, 60.0, *submitted.Attempt.Percentage)
	assert.True(t, *submitted.Attempt.IsPassed)
	assert.True(t, submitted.ShowResults)
	assert.Len(t, submitted.Answers, 2)

	assert.Equal(t, fiber.StatusConflict, api.call(t, learner, "POST", submitPath, answers, nil))

	var results dto.AttemptResultResponse
	require.Equal(t, fiber.StatusOK, api.call(t, learner, "GET", "/api/attempts/"+first.ID+"/results", nil, &results))
	assert.Equal(t, "submitted", results.Attempt.State)
	assert.Equal(t, fiber.StatusForbidden, api.call(t, outsider, "GET", "/api/attempts/"+first.ID+"/results", nil, nil))

	// Second attempt uses the last slot; a third is refused.
	var second dto.AttemptResponse
	require.Equal(t, fiber.StatusCreated, api.call(t, learner, "POST", "/api/quizzes/"+quiz.ID+"/attempts", nil, &second))
	assert.Equal(t, 2, second.AttemptNumber)
	assert.Equal(t, fiber.StatusUnprocessableEntity, api.call(t, learner, "POST", "/api/quizzes/"+quiz.ID+"/attempts", nil, nil))

	var list dto.AttemptListResponse
	require.Equal(t, fiber.StatusOK, api.call(t, learner, "GET", "/api/quizzes/"+quiz.ID+"/attempts", nil, &list))
	require.Len(t, list.Attempts, 2)
	assert.Equal(t, "submitted", list.Attempts[0].State)
	assert.Equal(t, "in_progress", list.Attempts[1].State)

	// Removing a question renumbers the rest.
	assert.Equal(t, fiber.StatusNoContent, api.call(t, teacher, "DELETE", "/api/quizzes/"+quiz.ID+"/questions/"+mc.ID, nil, nil))
	var staffView dto.QuizResponse
	require.Equal(t, fiber.StatusOK, api.call(t, teacher, "GET", "/api/quizzes/"+quiz.ID, nil, &staffView))
	require.Len(t, staffView.Questions, 1)
	assert.Equal(t, 1, staffView.Questions[0].Order)
	assert.Equal(t, 1, staffView.TotalQuestions)
}
