package service

import (
	"context"
	"errors"
	"time"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/metrics"
	"academy-quiz/internal/util"

	"go.uber.org/zap"
)

// AttemptService runs the attempt ledger: start, list, submit and result views.
type AttemptService interface {
	StartAttempt(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.AttemptResponse, error)
	ListAttempts(ctx context.Context, viewer domain.Viewer, quizID, learnerID string) (*dto.AttemptListResponse, error)
	SubmitAttempt(ctx context.Context, viewer domain.Viewer, quizID, attemptID string, answers []domain.SubmittedAnswer) (*dto.SubmitAttemptResponse, error)
	GetResults(ctx context.Context, viewer domain.Viewer, attemptID string) (*dto.AttemptResultResponse, error)
}

type attemptService struct {
	tx       domain.TransactionManager
	store    domain.QuizReader
	quizzes  domain.QuizReader
	attempts domain.AttemptRepository
	gate     EnrollmentGate
	grader   *domain.Grader
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

// NewAttemptService wires the ledger. store is read inside the submit transaction;
// quizzes may be cached and serves every other read.
func NewAttemptService(
	tx domain.TransactionManager,
	store domain.QuizReader,
	quizzes domain.QuizReader,
	attempts domain.AttemptRepository,
	gate EnrollmentGate,
	m *metrics.Metrics,
) AttemptService {
	return &attemptService{
		tx:       tx,
		store:    store,
		quizzes:  quizzes,
		attempts: attempts,
		gate:     gate,
		grader:   domain.NewGrader(util.NewULID),
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    util.NewULID,
	}
}

func (s *attemptService) loadQuiz(ctx context.Context, reader domain.QuizReader, quizID string) (*domain.Quiz, error) {
	quiz, err := reader.GetQuizDefinition(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return quiz, nil
}

// StartAttempt implements AttemptService
func (s *attemptService) StartAttempt(ctx context.Context, viewer domain.Viewer, quizID string) (resp *dto.AttemptResponse, err error) {
	defer func() { s.metrics.AttemptStarted(outcome(err)) }()

	quiz, err := s.loadQuiz(ctx, s.quizzes, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, domain.NewQuizInactiveError(quizID)
	}
	if err := s.gate.Authorize(ctx, viewer, quiz); err != nil {
		return nil, err
	}

	var attempt *domain.Attempt
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		count, err := s.attempts.CountAttempts(txCtx, quiz.ID, viewer.UserID)
		if err != nil {
			return domain.NewInternalError("failed to count attempts", err)
		}
		if count >= quiz.MaxAttempts {
			return domain.NewAttemptLimitExceededError(quiz.MaxAttempts)
		}

		attempt = domain.NewAttempt(s.newID(), quiz, viewer.UserID, count, s.now())
		if err := s.attempts.CreateAttempt(txCtx, attempt); err != nil {
			if errors.Is(err, domain.ErrAttemptNumberTaken) {
				return domain.NewConcurrentAttemptStartError(err)
			}
			return domain.NewInternalError("failed to create attempt", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Attempt started",
		zap.String("attempt_id", attempt.ID),
		zap.String("quiz_id", quiz.ID),
		zap.String("learner_id", viewer.UserID),
		zap.Int("attempt_number", attempt.AttemptNumber))

	r := dto.NewAttemptResponse(attempt)
	return &r, nil
}

// ListAttempts implements AttemptService. learnerID defaults to the viewer; only
// staff may list another learner's attempts.
func (s *attemptService) ListAttempts(ctx context.Context, viewer domain.Viewer, quizID, learnerID string) (*dto.AttemptListResponse, error) {
	if learnerID == "" {
		learnerID = viewer.UserID
	}
	if learnerID != viewer.UserID && !viewer.IsStaff() {
		return nil, domain.NewForbiddenError("cannot list another learner's attempts")
	}
	if _, err := s.loadQuiz(ctx, s.quizzes, quizID); err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListAttempts(ctx, quizID, learnerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list attempts", err)
	}

	resp := &dto.AttemptListResponse{Attempts: make([]dto.AttemptResponse, 0, len(attempts))}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, dto.NewAttemptResponse(a))
	}
	return resp, nil
}

// SubmitAttempt implements AttemptService. Grading and persistence share one
// transaction; a concurrent submit that lost the conditional update rolls back.
func (s *attemptService) SubmitAttempt(ctx context.Context, viewer domain.Viewer, quizID, attemptID string, answers []domain.SubmittedAnswer) (resp *dto.SubmitAttemptResponse, err error) {
	var graded *domain.GradedAttempt
	defer func() {
		pct := 0.0
		if graded != nil && graded.Attempt.Percentage != nil {
			pct = *graded.Attempt.Percentage
		}
		s.metrics.AttemptSubmitted(outcome(err), pct)
	}()

	var quiz *domain.Quiz
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		attempt, err := s.attempts.GetAttempt(txCtx, attemptID)
		if err != nil {
			return domain.NewInternalError("failed to load attempt", err)
		}
		if attempt == nil {
			return domain.NewAttemptNotFoundError(attemptID)
		}
		if !attempt.BelongsTo(viewer.UserID, quizID) {
			return domain.NewForbiddenError("attempt does not belong to this learner and quiz").
				WithContext("attempt_id", attemptID)
		}

		quiz, err = s.loadQuiz(txCtx, s.store, quizID)
		if err != nil {
			return err
		}

		result, err := s.grader.Grade(attempt, quiz, answers, s.now())
		if err != nil {
			return err
		}

		applied, err := s.attempts.MarkSubmitted(txCtx, result.Attempt)
		if err != nil {
			return domain.NewInternalError("failed to store graded attempt", err)
		}
		if !applied {
			return domain.NewAlreadySubmittedError(attemptID)
		}
		if err := s.attempts.SaveAnswers(txCtx, result.Answers); err != nil {
			return domain.NewInternalError("failed to store answers", err)
		}
		graded = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	a := graded.Attempt
	logger.Get().Info("Attempt submitted",
		zap.String("attempt_id", a.ID),
		zap.String("quiz_id", quizID),
		zap.Int("total_score", *a.TotalScore),
		zap.Float64("percentage", *a.Percentage),
		zap.Bool("is_passed", *a.IsPassed))

	resp = &dto.SubmitAttemptResponse{
		Attempt:     dto.NewAttemptResponse(a),
		ShowResults: quiz.ShowResultsImmediately,
	}
	if resp.ShowResults {
		resp.Answers = dto.NewAnswerResults(graded.Answers, quiz)
	}
	return resp, nil
}

// GetResults implements AttemptService
func (s *attemptService) GetResults(ctx context.Context, viewer domain.Viewer, attemptID string) (*dto.AttemptResultResponse, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load attempt", err)
	}
	if attempt == nil {
		return nil, domain.NewAttemptNotFoundError(attemptID)
	}

	quiz, err := s.loadQuiz(ctx, s.quizzes, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeResultView(viewer, attempt, quiz); err != nil {
		return nil, err
	}

	answers, err := s.attempts.GetAnswers(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load answers", err)
	}

	return &dto.AttemptResultResponse{
		Attempt: dto.NewAttemptResponse(attempt),
		Answers: dto.NewAnswerResults(answers, quiz),
	}, nil
}

// outcome labels a metric with "ok" or the error code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return string(domainErr.Code)
	}
	return string(domain.CodeInternal)
}
