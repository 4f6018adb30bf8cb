package service

import (
	"context"
	"math/rand"
	"sort"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/util"

	"go.uber.org/zap"
)

// QuizService defines the interface for quiz preview and authoring
type QuizService interface {
	GetQuiz(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.QuizResponse, error)
	CreateQuiz(ctx context.Context, req *dto.CreateQuizRequest) (*dto.QuizResponse, error)
	AddQuestion(ctx context.Context, quizID string, req *dto.AddQuestionRequest) (*dto.QuestionResponse, error)
	RemoveQuestion(ctx context.Context, quizID, questionID string) error
}

// quizService implements QuizService
type quizService struct {
	tx      domain.TransactionManager
	repo    domain.QuizRepository
	reader  QuizDefinitionCache
	gate    EnrollmentGate
	shuffle func(n int, swap func(i, j int))
}

// NewQuizService creates a new instance of quizService
func NewQuizService(tx domain.TransactionManager, repo domain.QuizRepository, reader QuizDefinitionCache, gate EnrollmentGate) QuizService {
	return &quizService{
		tx:      tx,
		repo:    repo,
		reader:  reader,
		gate:    gate,
		shuffle: rand.Shuffle,
	}
}

// GetQuiz implements QuizService. Learners must be enrolled, see active quizzes
// only, never see the answer key, and get shuffled questions when the quiz asks for it.
func (s *quizService) GetQuiz(ctx context.Context, viewer domain.Viewer, quizID string) (*dto.QuizResponse, error) {
	quiz, err := s.reader.GetQuizDefinition(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	if !viewer.IsStaff() {
		if !quiz.IsActive {
			return nil, domain.NewQuizInactiveError(quizID)
		}
		if err := s.gate.Authorize(ctx, viewer, quiz); err != nil {
			return nil, err
		}
	}

	withKey := domain.RevealAnswerKey(viewer)
	if !withKey {
		quiz = quiz.Redacted()
		if quiz.ShuffleQuestions {
			s.shuffle(len(quiz.Questions), func(i, j int) {
				quiz.Questions[i], quiz.Questions[j] = quiz.Questions[j], quiz.Questions[i]
			})
		}
	}
	return dto.NewQuizResponse(quiz, withKey), nil
}

// CreateQuiz implements QuizService
func (s *quizService) CreateQuiz(ctx context.Context, req *dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	quiz := domain.NewQuiz(util.NewULID(), req.ProgramID, req.Title)
	quiz.TimeLimitMinutes = req.TimeLimitMinutes
	quiz.PassingScore = req.PassingScore
	quiz.ShuffleQuestions = req.ShuffleQuestions
	quiz.ShowResultsImmediately = req.ShowResultsImmediately
	quiz.MaxAttempts = req.MaxAttempts
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to save quiz", err)
	}
	logger.Get().Info("Quiz created", zap.String("quiz_id", quiz.ID), zap.String("program_id", quiz.ProgramID))
	return dto.NewQuizResponse(quiz, true), nil
}

// AddQuestion implements QuizService. The question is appended after the last one.
func (s *quizService) AddQuestion(ctx context.Context, quizID string, req *dto.AddQuestionRequest) (*dto.QuestionResponse, error) {
	qType, err := domain.ParseQuestionType(req.Type)
	if err != nil {
		return nil, domain.NewInvalidInputError(err.Error())
	}

	question := &domain.Question{
		ID:           util.NewULID(),
		QuizID:       quizID,
		Type:         qType,
		QuestionText: req.QuestionText,
		Points:       req.Points,
	}
	for i, o := range req.Options {
		question.Options = append(question.Options, &domain.Option{
			ID:         util.NewULID(),
			QuestionID: question.ID,
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
			Order:      i + 1,
		})
	}
	if err := question.Validate(); err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		quiz, err := s.repo.GetQuizDefinition(txCtx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to load quiz", err)
		}
		if quiz == nil {
			return domain.NewQuizNotFoundError(quizID)
		}

		question.Order = quiz.NextQuestionOrder()
		if err := s.repo.AddQuestion(txCtx, question); err != nil {
			return domain.NewInternalError("failed to save question", err)
		}
		if err := s.repo.SetTotalQuestions(txCtx, quizID, len(quiz.Questions)+1); err != nil {
			return domain.NewInternalError("failed to update question count", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.evict(ctx, quizID)
	resp := dto.NewQuestionResponse(question, true)
	return &resp, nil
}

// RemoveQuestion implements QuizService. Remaining questions are renumbered 1..n.
func (s *quizService) RemoveQuestion(ctx context.Context, quizID, questionID string) error {
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		quiz, err := s.repo.GetQuizDefinition(txCtx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to load quiz", err)
		}
		if quiz == nil {
			return domain.NewQuizNotFoundError(quizID)
		}
		if _, ok := quiz.Question(questionID); !ok {
			return domain.NewQuestionNotFoundError(questionID)
		}

		deleted, err := s.repo.DeleteQuestion(txCtx, quizID, questionID)
		if err != nil {
			return domain.NewInternalError("failed to delete question", err)
		}
		if !deleted {
			return domain.NewQuestionNotFoundError(questionID)
		}

		remaining := make([]*domain.Question, 0, len(quiz.Questions)-1)
		for _, q := range quiz.Questions {
			if q.ID != questionID {
				remaining = append(remaining, q)
			}
		}
		sort.SliceStable(remaining, func(i, j int) bool { return remaining[i].Order < remaining[j].Order })
		domain.Renumber(remaining)

		if err := s.repo.UpdateQuestionOrders(txCtx, remaining); err != nil {
			return domain.NewInternalError("failed to renumber questions", err)
		}
		if err := s.repo.SetTotalQuestions(txCtx, quizID, len(remaining)); err != nil {
			return domain.NewInternalError("failed to update question count", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.evict(ctx, quizID)
	return nil
}

// evict runs after commit. A failed eviction leaves the entry to expire by TTL.
func (s *quizService) evict(ctx context.Context, quizID string) {
	if err := s.reader.Evict(ctx, quizID); err != nil {
		logger.Get().Warn("Failed to evict cached quiz", zap.String("quiz_id", quizID), zap.Error(err))
	}
}
