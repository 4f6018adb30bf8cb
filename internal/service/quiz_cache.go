package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"academy-quiz/internal/cache"
	"academy-quiz/internal/domain"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizDefinitionCache is a QuizReader that serves definitions from a cache.
type QuizDefinitionCache interface {
	domain.QuizReader
	// Evict drops the cached definition of quizID.
	Evict(ctx context.Context, quizID string) error
}

// cachedQuizReader stores definitions as JSON under cache.QuizDefinitionKey.
// Concurrent misses for one quiz share a single store read.
type cachedQuizReader struct {
	next    domain.QuizReader
	cache   domain.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
}

// NewQuizDefinitionCache wraps next. With a nil cache every read goes to next.
func NewQuizDefinitionCache(next domain.QuizReader, c domain.Cache, ttl time.Duration, m *metrics.Metrics) QuizDefinitionCache {
	if c == nil {
		logger.Get().Warn("Quiz definition cache initialized without a cache backend; reads go to the store")
		return &passthroughQuizReader{next: next}
	}
	return &cachedQuizReader{next: next, cache: c, ttl: ttl, metrics: m}
}

func (r *cachedQuizReader) GetQuizDefinition(ctx context.Context, quizID string) (*domain.Quiz, error) {
	key := cache.QuizDefinitionKey(quizID)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cq cachedQuiz
		jsonErr := json.Unmarshal([]byte(data), &cq)
		if jsonErr == nil {
			r.metrics.CacheLookup("hit")
			return cq.toDomain(), nil
		}
		logger.Get().Warn("Discarding undecodable quiz cache entry", zap.String("key", key), zap.Error(jsonErr))
		r.metrics.CacheLookup("miss")
	case errors.Is(err, domain.ErrCacheMiss):
		r.metrics.CacheLookup("miss")
	default:
		r.metrics.CacheLookup("error")
		logger.Get().Warn("Quiz cache read failed; falling back to store", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := r.group.Do(quizID, func() (interface{}, error) {
		quiz, err := r.next.GetQuizDefinition(ctx, quizID)
		if err != nil || quiz == nil {
			return quiz, err
		}
		r.store(ctx, key, quiz)
		return quiz, nil
	})
	if err != nil {
		return nil, err
	}
	quiz, _ := v.(*domain.Quiz)
	if quiz == nil {
		return nil, nil
	}
	// Callers that shared the flight must not share the tree.
	return quiz.Clone(), nil
}

func (r *cachedQuizReader) store(ctx context.Context, key string, quiz *domain.Quiz) {
	data, err := json.Marshal(newCachedQuiz(quiz))
	if err != nil {
		logger.Get().Error("Failed to marshal quiz for caching", zap.String("quiz_id", quiz.ID), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, string(data), r.ttl); err != nil {
		logger.Get().Warn("Failed to cache quiz definition", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Get().Debug("Cached quiz definition", zap.String("key", key), zap.Duration("ttl", r.ttl))
}

func (r *cachedQuizReader) Evict(ctx context.Context, quizID string) error {
	r.group.Forget(quizID)
	if err := r.cache.Delete(ctx, cache.QuizDefinitionKey(quizID)); err != nil {
		return domain.NewInternalError("failed to evict cached quiz", err)
	}
	return nil
}

type passthroughQuizReader struct {
	next domain.QuizReader
}

func (p *passthroughQuizReader) GetQuizDefinition(ctx context.Context, quizID string) (*domain.Quiz, error) {
	return p.next.GetQuizDefinition(ctx, quizID)
}

func (p *passthroughQuizReader) Evict(context.Context, string) error { return nil }

// cachedQuiz is the JSON layout of a cache entry.
type cachedQuiz struct {
	ID                     string           `json:"id"`
	ProgramID              string           `json:"program_id"`
	Title                  string           `json:"title"`
	TimeLimitMinutes       *int             `json:"time_limit_minutes,omitempty"`
	PassingScore           int              `json:"passing_score"`
	ShuffleQuestions       bool             `json:"shuffle_questions"`
	ShowResultsImmediately bool             `json:"show_results_immediately"`
	MaxAttempts            int              `json:"max_attempts"`
	IsActive               bool             `json:"is_active"`
	TotalQuestions         int              `json:"total_questions"`
	Questions              []cachedQuestion `json:"questions"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

type cachedQuestion struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	QuestionText string         `json:"question_text"`
	Points       int            `json:"points"`
	Order        int            `json:"order"`
	Options      []cachedOption `json:"options"`
}

type cachedOption struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
	Order      int    `json:"order"`
}

func newCachedQuiz(q *domain.Quiz) cachedQuiz {
	cq := cachedQuiz{
		ID:                     q.ID,
		ProgramID:              q.ProgramID,
		Title:                  q.Title,
		TimeLimitMinutes:       q.TimeLimitMinutes,
		PassingScore:           q.PassingScore,
		ShuffleQuestions:       q.ShuffleQuestions,
		ShowResultsImmediately: q.ShowResultsImmediately,
		MaxAttempts:            q.MaxAttempts,
		IsActive:               q.IsActive,
		TotalQuestions:         q.TotalQuestions,
		Questions:              make([]cachedQuestion, 0, len(q.Questions)),
		CreatedAt:              q.CreatedAt,
		UpdatedAt:              q.UpdatedAt,
	}
	for _, question := range q.Questions {
		cqq := cachedQuestion{
			ID:           question.ID,
			Type:         string(question.Type),
			QuestionText: question.QuestionText,
			Points:       question.Points,
			Order:        question.Order,
			Options:      make([]cachedOption, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			cqq.Options = append(cqq.Options, cachedOption{ID: opt.ID, OptionText: opt.OptionText, IsCorrect: opt.IsCorrect, Order: opt.Order})
		}
		cq.Questions = append(cq.Questions, cqq)
	}
	return cq
}

func (cq cachedQuiz) toDomain() *domain.Quiz {
	quiz := &domain.Quiz{
		ID:                     cq.ID,
		ProgramID:              cq.ProgramID,
		Title:                  cq.Title,
		TimeLimitMinutes:       cq.TimeLimitMinutes,
		PassingScore:           cq.PassingScore,
		ShuffleQuestions:       cq.ShuffleQuestions,
		ShowResultsImmediately: cq.ShowResultsImmediately,
		MaxAttempts:            cq.MaxAttempts,
		IsActive:               cq.IsActive,
		TotalQuestions:         cq.TotalQuestions,
		Questions:              make([]*domain.Question, 0, len(cq.Questions)),
		CreatedAt:              cq.CreatedAt,
		UpdatedAt:              cq.UpdatedAt,
	}
	for _, cqq := range cq.Questions {
		question := &domain.Question{
			ID:           cqq.ID,
			QuizID:       cq.ID,
			Type:         domain.QuestionType(cqq.Type),
			QuestionText: cqq.QuestionText,
			Points:       cqq.Points,
			Order:        cqq.Order,
			Options:      make([]*domain.Option, 0, len(cqq.Options)),
		}
		for _, co := range cqq.Options {
			question.Options = append(question.Options, &domain.Option{
				ID:         co.ID,
				QuestionID: cqq.ID,
				OptionText: co.OptionText,
				IsCorrect:  co.IsCorrect,
				Order:      co.Order,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}
