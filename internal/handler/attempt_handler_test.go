package handler_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/handler"
	"academy-quiz/internal/middleware"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAttempt() *dto.AttemptResponse {
	return &dto.AttemptResponse{
		ID:               attemptID,
		QuizID:           quizID,
		LearnerID:        "learner-1",
		AttemptNumber:    1,
		State:            domain.AttemptInProgress.String(),
		MaxPossibleScore: 5,
		StartedAt:        time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAttemptHandler_StartAttempt(t *testing.T) {
	mockSvc := &MockAttemptService{}
	h := handler.NewAttemptHandler(mockSvc, validation.NewValidator())

	app := newTestApp()
	app.Post("/quizzes/:quizID/attempts", as("learner-1", domain.RoleLearner, h.StartAttempt))

	tests := []struct {
		name         string
		serviceErr   error
		expectedCode int
		expectedErr  domain.ErrorCode
	}{
		{"started", nil, fiber.StatusCreated, ""},
		{"limit reached", domain.NewAttemptLimitExceededError(2), fiber.StatusUnprocessableEntity, domain.CodeAttemptLimitExceeded},
		{"inactive quiz", domain.NewQuizInactiveError(quizID), fiber.StatusUnprocessableEntity, domain.CodeQuizInactive},
		{"not enrolled", domain.NewNotEnrolledError(quizID), fiber.StatusForbidden, domain.CodeNotEnrolled},
		{"lost start race", domain.NewConcurrentAttemptStartError(domain.ErrAttemptNumberTaken), fiber.StatusConflict, domain.CodeConcurrentAttemptStart},
		{"missing quiz", domain.NewQuizNotFoundError(quizID), fiber.StatusNotFound, domain.CodeQuizNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc.StartAttemptFunc = func(_ context.Context, viewer domain.Viewer, id string) (*dto.AttemptResponse, error) {
				assert.Equal(t, "learner-1", viewer.UserID)
				assert.Equal(t, quizID, id)
				if tt.serviceErr != nil {
					return nil, tt.serviceErr
				}
				return sampleAttempt(), nil
			}

			resp, err := app.Test(httptest.NewRequest("POST", "/quizzes/"+quizID+"/attempts", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.StatusCode)

			if tt.expectedErr == "" {
				var body dto.AttemptResponse
				decode(t, resp.Body, &body)
				assert.Equal(t, "in_progress", body.State)
				assert.Nil(t, body.TotalScore)
				return
			}
			var body middleware.ErrorResponse
			decode(t, resp.Body, &body)
			assert.Equal(t, string(tt.expectedErr), body.Code)
		})
	}
}

func TestAttemptHandler_ListAttempts(t *testing.T) {
	mockSvc := &MockAttemptService{}
	h := handler.NewAttemptHandler(mockSvc, validation.NewValidator())

	learnerApp := newTestApp()
	learnerApp.Get("/quizzes/:quizID/attempts", as("learner-1", domain.RoleLearner, h.ListAttempts))
	teacherApp := newTestApp()
	teacherApp.Get("/quizzes/:quizID/attempts", as("teacher-1", domain.RoleTeacher, h.ListAttempts))

	t.Run("defaults to the caller", func(t *testing.T) {
		mockSvc.ListAttemptsFunc = func(_ context.Context, _ domain.Viewer, _ string, learnerID string) (*dto.AttemptListResponse, error) {
			assert.Equal(t, "learner-1", learnerID)
			return &dto.AttemptListResponse{Attempts: []dto.AttemptResponse{*sampleAttempt()}}, nil
		}

		resp, err := learnerApp.Test(httptest.NewRequest("GET", "/quizzes/"+quizID+"/attempts", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.AttemptListResponse
		decode(t, resp.Body, &body)
		require.Len(t, body.Attempts, 1)
		assert.Equal(t, 1, body.Attempts[0].AttemptNumber)
	})

	t.Run("staff names a learner", func(t *testing.T) {
		mockSvc.ListAttemptsFunc = func(_ context.Context, viewer domain.Viewer, _ string, learnerID string) (*dto.AttemptListResponse, error) {
			assert.True(t, viewer.IsStaff())
			assert.Equal(t, "learner-7", learnerID)
			return &dto.AttemptListResponse{Attempts: []dto.AttemptResponse{}}, nil
		}

		resp, err := teacherApp.Test(httptest.NewRequest("GET", "/quizzes/"+quizID+"/attempts?learner_id=learner-7", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("learner asks for someone else", func(t *testing.T) {
		mockSvc.ListAttemptsFunc = func(context.Context, domain.Viewer, string, string) (*dto.AttemptListResponse, error) {
			return nil, domain.NewForbiddenError("cannot list another learner's attempts")
		}

		resp, err := learnerApp.Test(httptest.NewRequest("GET", "/quizzes/"+quizID+"/attempts?learner_id=learner-7", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestAttemptHandler_SubmitAttempt(t *testing.T) {
	mockSvc := &MockAttemptService{}
	h := handler.NewAttemptHandler(mockSvc, validation.NewValidator())

	app := newTestApp()
	app.Post("/quizzes/:quizID/attempts/:attemptID/submit", as("learner-1", domain.RoleLearner, h.SubmitAttempt))
	url := "/quizzes/" + quizID + "/attempts/" + attemptID + "/submit"

	t.Run("graded", func(t *testing.T) {
		mockSvc.SubmitAttemptFunc = func(_ context.Context, _ domain.Viewer, qz, at string, answers []domain.SubmittedAnswer) (*dto.SubmitAttemptResponse, error) {
			assert.Equal(t, quizID, qz)
			assert.Equal(t, attemptID, at)
			require.Len(t, answers, 2)
			assert.Equal(t, "q1", answers[0].QuestionID)
			assert.Equal(t, "q1-b", *answers[0].SelectedOptionID)
			assert.Nil(t, answers[1].SelectedOptionID)

			attempt := sampleAttempt()
			total, pct, passed := 3, 60.0, true
			attempt.State, attempt.TotalScore, attempt.Percentage, attempt.IsPassed = "submitted", &total, &pct, &passed
			return &dto.SubmitAttemptResponse{Attempt: *attempt, ShowResults: true, Answers: []dto.AnswerResultResponse{
				{QuestionID: "q1", IsCorrect: true, PointsEarned: 3, CorrectOptionIDs: []string{"q1-b"}},
				{QuestionID: "q2", CorrectOptionIDs: []string{"q2-f"}},
			}}, nil
		}

		req := httptest.NewRequest("POST", url, jsonBody(t, map[string]interface{}{
			"answers": []map[string]interface{}{
				{"question_id": "q1", "selected_option_id": "q1-b"},
				{"question_id": "q2"},
			},
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.SubmitAttemptResponse
		decode(t, resp.Body, &body)
		assert.True(t, body.ShowResults)
		assert.Equal(t, 60.0, *body.Attempt.Percentage)
		assert.Len(t, body.Answers, 2)
	})

	t.Run("answer without question id", func(t *testing.T) {
		mockSvc.SubmitAttemptFunc = nil

		req := httptest.NewRequest("POST", url, jsonBody(t, map[string]interface{}{
			"answers": []map[string]interface{}{{"selected_option_id": "q1-b"}},
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ValidationErrorResponse
		decode(t, resp.Body, &body)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "answers[0].question_id", body.Errors[0].Field)
	})

	t.Run("already submitted", func(t *testing.T) {
		mockSvc.SubmitAttemptFunc = func(context.Context, domain.Viewer, string, string, []domain.SubmittedAnswer) (*dto.SubmitAttemptResponse, error) {
			return nil, domain.NewAlreadySubmittedError(attemptID)
		}

		req := httptest.NewRequest("POST", url, jsonBody(t, map[string]interface{}{"answers": []interface{}{}}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		var body middleware.ErrorResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodeAlreadySubmitted), body.Code)
	})
}

func TestAttemptHandler_GetResults(t *testing.T) {
	mockSvc := &MockAttemptService{}
	h := handler.NewAttemptHandler(mockSvc, validation.NewValidator())

	app := newTestApp()
	app.Get("/attempts/:attemptID/results", as("learner-1", domain.RoleLearner, h.GetResults))

	t.Run("visible", func(t *testing.T) {
		mockSvc.GetResultsFunc = func(_ context.Context, viewer domain.Viewer, id string) (*dto.AttemptResultResponse, error) {
			assert.Equal(t, "learner-1", viewer.UserID)
			assert.Equal(t, attemptID, id)
			return &dto.AttemptResultResponse{Attempt: *sampleAttempt(), Answers: []dto.AnswerResultResponse{}}, nil
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/attempts/"+attemptID+"/results", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("deferred results", func(t *testing.T) {
		mockSvc.GetResultsFunc = func(context.Context, domain.Viewer, string) (*dto.AttemptResultResponse, error) {
			return nil, domain.NewResultsNotVisibleError(attemptID)
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/attempts/"+attemptID+"/results", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		var body middleware.ErrorResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodeResultsNotVisible), body.Code)
	})
}
