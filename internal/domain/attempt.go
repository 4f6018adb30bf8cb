package domain

import "time"

// AttemptState is the lifecycle position of an Attempt. Submitted is terminal.
type AttemptState int

const (
	AttemptInProgress AttemptState = iota
	AttemptSubmitted
)

func (s AttemptState) String() string {
	if s == AttemptSubmitted {
		return "submitted"
	}
	return "in_progress"
}

// Attempt is one learner's try at a quiz. Score fields stay nil until it is submitted.
type Attempt struct {
	ID               string
	QuizID           string
	LearnerID        string
	AttemptNumber    int
	MaxPossibleScore int
	TotalScore       *int
	Percentage       *float64
	IsPassed         *bool
	StartedAt        time.Time
	SubmittedAt      *time.Time
	TimeTakenMinutes *int
	Answers          []*Answer
}

// NewAttempt opens attempt number priorCount+1 for the learner.
func NewAttempt(id string, quiz *Quiz, learnerID string, priorCount int, now time.Time) *Attempt {
	return &Attempt{
		ID:               id,
		QuizID:           quiz.ID,
		LearnerID:        learnerID,
		AttemptNumber:    priorCount + 1,
		MaxPossibleScore: quiz.MaxPossibleScore(),
		StartedAt:        now,
	}
}

// State derives the lifecycle state from SubmittedAt.
func (a *Attempt) State() AttemptState {
	if a.SubmittedAt != nil {
		return AttemptSubmitted
	}
	return AttemptInProgress
}

// IsSubmitted reports whether the attempt reached its terminal state.
func (a *Attempt) IsSubmitted() bool {
	return a.State() == AttemptSubmitted
}

// BelongsTo reports whether the attempt was started by learnerID on quizID.
func (a *Attempt) BelongsTo(learnerID, quizID string) bool {
	return a.LearnerID == learnerID && a.QuizID == quizID
}

// Answer is the graded response to one question. Rows are written once at submit.
type Answer struct {
	ID               string
	AttemptID        string
	QuestionID       string
	SelectedOptionID *string
	AnswerText       *string
	IsCorrect        bool
	PointsEarned     int
}

// SubmittedAnswer is a learner's raw response before grading.
type SubmittedAnswer struct {
	QuestionID       string
	SelectedOptionID *string
	AnswerText       *string
}

// GradedAttempt is the outcome of grading: the attempt with its score fields set
// and the answers to persist with it.
type GradedAttempt struct {
	Attempt *Attempt
	Answers []*Answer
}
