package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType is the closed set of question variants a quiz can hold.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{
	QuestionTypeMultipleChoice,
	QuestionTypeTrueFalse,
	QuestionTypeShortAnswer,
	QuestionTypeEssay,
}

// ParseQuestionType converts a raw string into a QuestionType.
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Valid reports whether t is one of the supported variants.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer, QuestionTypeEssay:
		return true
	}
	return false
}

// IsAutoGradable reports whether correctness can be derived from the selected option alone.
func (t QuestionType) IsAutoGradable() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// RequiresOptions reports whether a question of this type needs at least MinOptions options.
func (t QuestionType) RequiresOptions() bool {
	return t.IsAutoGradable()
}

const (
	// MinOptions is the minimum number of options for choice-based questions.
	MinOptions = 2
	// MaxPassingScore is the upper bound of Quiz.PassingScore.
	MaxPassingScore = 100
)

// Quiz is the definition a learner attempts. Questions are ordered by Order.
type Quiz struct {
	ID                     string
	ProgramID              string
	Title                  string
	TimeLimitMinutes       *int
	PassingScore           int
	ShuffleQuestions       bool
	ShowResultsImmediately bool
	MaxAttempts            int
	IsActive               bool
	TotalQuestions         int
	Questions              []*Question
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewQuiz creates an active quiz with no questions.
func NewQuiz(id, programID, title string) *Quiz {
	now := time.Now()
	return &Quiz{
		ID:          id,
		ProgramID:   programID,
		Title:       title,
		MaxAttempts: 1,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the quiz settings.
func (q *Quiz) Validate() error {
	if q.ProgramID == "" {
		return NewInvalidInputError("program_id is required")
	}
	if strings.TrimSpace(q.Title) == "" {
		return NewInvalidInputError("title is required")
	}
	if q.PassingScore < 0 || q.PassingScore > MaxPassingScore {
		return NewInvalidInputError("passing_score must be between 0 and 100")
	}
	if q.MaxAttempts < 1 {
		return NewInvalidInputError("max_attempts must be at least 1")
	}
	if q.TimeLimitMinutes != nil && *q.TimeLimitMinutes <= 0 {
		return NewInvalidInputError("time_limit_minutes must be positive")
	}
	return nil
}

// MaxPossibleScore sums the points of every question.
func (q *Quiz) MaxPossibleScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Question looks up a question by id.
func (q *Quiz) Question(id string) (*Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return nil, false
}

// NextQuestionOrder is the order a newly appended question receives.
func (q *Quiz) NextQuestionOrder() int {
	last := 0
	for _, question := range q.Questions {
		if question.Order > last {
			last = question.Order
		}
	}
	return last + 1
}

// Question belongs to a Quiz. Order is 1-based.
type Question struct {
	ID           string
	QuizID       string
	Type         QuestionType
	QuestionText string
	Points       int
	Order        int
	Options      []*Option
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the question before it is stored.
func (q *Question) Validate() error {
	if !q.Type.Valid() {
		return NewInvalidInputError(fmt.Sprintf("unknown question type %q", q.Type))
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return NewInvalidInputError("question_text is required")
	}
	if q.Points <= 0 {
		return NewInvalidInputError("points must be positive")
	}
	if q.Type.RequiresOptions() && len(q.Options) < MinOptions {
		return NewInvalidInputError(fmt.Sprintf("%s questions need at least %d options", q.Type, MinOptions)).
			WithContext("options", len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt.OptionText) == "" {
			return NewInvalidInputError(fmt.Sprintf("option %d: option_text is required", i+1))
		}
	}
	return nil
}

// Option looks up one of the question's options by id.
func (q *Question) Option(id string) (*Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return nil, false
}

// CorrectOptionIDs returns the ids of options flagged correct, in option order.
func (q *Question) CorrectOptionIDs() []string {
	ids := make([]string, 0, 1)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// Option is one selectable answer of a Question.
type Option struct {
	ID         string
	QuestionID string
	OptionText string
	IsCorrect  bool
	Order      int
}

// Renumber assigns dense 1-based orders to the questions in their current slice order.
func Renumber(questions []*Question) {
	for i, question := range questions {
		question.Order = i + 1
	}
}
