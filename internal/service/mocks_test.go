package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"academy-quiz/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockAttemptRepository ---
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CountAttempts(ctx context.Context, quizID, learnerID string) (int, error) {
	args := m.Called(ctx, quizID, learnerID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	return m.Called(ctx, attempt).Error(0)
}

func (m *MockAttemptRepository) GetAttempt(ctx context.Context, attemptID string) (*domain.Attempt, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListAttempts(ctx context.Context, quizID, learnerID string) ([]*domain.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) MarkSubmitted(ctx context.Context, attempt *domain.Attempt) (bool, error) {
	args := m.Called(ctx, attempt)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) SaveAnswers(ctx context.Context, answers []*domain.Answer) error {
	return m.Called(ctx, answers).Error(0)
}

func (m *MockAttemptRepository) GetAnswers(ctx context.Context, attemptID string) ([]*domain.Answer, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Answer), args.Error(1)
}

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetQuizDefinition(ctx context.Context, quizID string) (*domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	return m.Called(ctx, quiz).Error(0)
}

func (m *MockQuizRepository) AddQuestion(ctx context.Context, question *domain.Question) error {
	return m.Called(ctx, question).Error(0)
}

func (m *MockQuizRepository) DeleteQuestion(ctx context.Context, quizID, questionID string) (bool, error) {
	args := m.Called(ctx, quizID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuestionOrders(ctx context.Context, questions []*domain.Question) error {
	return m.Called(ctx, questions).Error(0)
}

func (m *MockQuizRepository) SetTotalQuestions(ctx context.Context, quizID string, total int) error {
	return m.Called(ctx, quizID, total).Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- fakes ---

// passTx runs fn directly; repositories under test carry no real transaction.
type passTx struct{}

func (passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeEnrollments enrolls every (learner, program) pair present in the set.
type fakeEnrollments map[[2]string]bool

func (f fakeEnrollments) IsEnrolled(_ context.Context, learnerID, programID string) (bool, error) {
	return f[[2]string{learnerID, programID}], nil
}

// memQuizzes returns clones of the stored quizzes so callers cannot mutate them.
type memQuizzes struct {
	mu      sync.Mutex
	quizzes map[string]*domain.Quiz
	reads   int
}

func newMemQuizzes(quizzes ...*domain.Quiz) *memQuizzes {
	m := &memQuizzes{quizzes: map[string]*domain.Quiz{}}
	for _, q := range quizzes {
		m.quizzes[q.ID] = q
	}
	return m
}

func (m *memQuizzes) GetQuizDefinition(_ context.Context, quizID string) (*domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	q, ok := m.quizzes[quizID]
	if !ok {
		return nil, nil
	}
	return q.Clone(), nil
}

// memAttempts enforces the (quiz, learner, attempt_number) uniqueness and the
// conditional submit the SQL store provides.
type memAttempts struct {
	mu       sync.Mutex
	attempts map[string]*domain.Attempt
	answers  map[string][]*domain.Answer
	slots    map[string]bool
}

func newMemAttempts() *memAttempts {
	return &memAttempts{
		attempts: map[string]*domain.Attempt{},
		answers:  map[string][]*domain.Answer{},
		slots:    map[string]bool{},
	}
}

func slotKey(quizID, learnerID string, n int) string {
	return fmt.Sprintf("%s|%s|%d", quizID, learnerID, n)
}

func (m *memAttempts) CountAttempts(_ context.Context, quizID, learnerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.LearnerID == learnerID {
			n++
		}
	}
	return n, nil
}

func (m *memAttempts) CreateAttempt(_ context.Context, attempt *domain.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := slotKey(attempt.QuizID, attempt.LearnerID, attempt.AttemptNumber)
	if m.slots[key] {
		return domain.ErrAttemptNumberTaken
	}
	m.slots[key] = true
	cp := *attempt
	m.attempts[attempt.ID] = &cp
	return nil
}

func (m *memAttempts) GetAttempt(_ context.Context, attemptID string) (*domain.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memAttempts) ListAttempts(_ context.Context, quizID, learnerID string) ([]*domain.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Attempt{}
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.LearnerID == learnerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (m *memAttempts) MarkSubmitted(_ context.Context, attempt *domain.Attempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.attempts[attempt.ID]
	if !ok || stored.SubmittedAt != nil {
		return false, nil
	}
	cp := *attempt
	cp.Answers = nil
	m.attempts[attempt.ID] = &cp
	return true, nil
}

func (m *memAttempts) SaveAnswers(_ context.Context, answers []*domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range answers {
		m.answers[a.AttemptID] = append(m.answers[a.AttemptID], a)
	}
	return nil
}

func (m *memAttempts) GetAnswers(_ context.Context, attemptID string) ([]*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Answer{}, m.answers[attemptID]...), nil
}

// memCache is a goroutine-safe domain.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

// --- fixtures ---

func strPtr(s string) *string { return &s }

// scenarioQuiz is a 3-point multiple choice plus a 2-point true/false question.
func scenarioQuiz() *domain.Quiz {
	quiz := domain.NewQuiz("quiz-1", "prog-1", "Greetings")
	quiz.PassingScore = 60
	quiz.MaxAttempts = 2
	quiz.ShowResultsImmediately = true
	quiz.Questions = []*domain.Question{
		{
			ID: "q1", QuizID: "quiz-1", Type: domain.QuestionTypeMultipleChoice, QuestionText: "Hello in French?", Points: 3, Order: 1,
			Options: []*domain.Option{
				{ID: "q1-a", QuestionID: "q1", OptionText: "Hola", Order: 1},
				{ID: "q1-b", QuestionID: "q1", OptionText: "Bonjour", IsCorrect: true, Order: 2},
			},
		},
		{
			ID: "q2", QuizID: "quiz-1", Type: domain.QuestionTypeTrueFalse, QuestionText: "Ciao is Spanish", Points: 2, Order: 2,
			Options: []*domain.Option{
				{ID: "q2-t", QuestionID: "q2", OptionText: "True", Order: 1},
				{ID: "q2-f", QuestionID: "q2", OptionText: "False", IsCorrect: true, Order: 2},
			},
		},
	}
	quiz.TotalQuestions = 2
	quiz.CreatedAt = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	quiz.UpdatedAt = quiz.CreatedAt
	return quiz
}
