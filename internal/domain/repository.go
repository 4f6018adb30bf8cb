package domain

import "context"

// TransactionManager runs fn inside a single database transaction. Repositories
// called with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuizReader loads quiz definitions. A missing quiz yields (nil, nil).
type QuizReader interface {
	// GetQuizDefinition returns the quiz with its questions and options ordered by order.
	GetQuizDefinition(ctx context.Context, quizID string) (*Quiz, error)
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	QuizReader

	// SaveQuiz persists a new quiz without questions.
	SaveQuiz(ctx context.Context, quiz *Quiz) error

	// AddQuestion persists the question and its options.
	AddQuestion(ctx context.Context, question *Question) error

	// DeleteQuestion removes the question and its options. It reports whether a row was deleted.
	DeleteQuestion(ctx context.Context, quizID, questionID string) (bool, error)

	// UpdateQuestionOrders writes the Order of each question.
	UpdateQuestionOrders(ctx context.Context, questions []*Question) error

	// SetTotalQuestions stores the denormalized question count.
	SetTotalQuestions(ctx context.Context, quizID string, total int) error
}

// AttemptRepository defines the interface for attempt persistence
type AttemptRepository interface {
	// CountAttempts returns how many attempts the learner has started on the quiz.
	CountAttempts(ctx context.Context, quizID, learnerID string) (int, error)

	// CreateAttempt inserts a new attempt. It returns ErrAttemptNumberTaken when the
	// (quiz, learner, attempt_number) slot already exists.
	CreateAttempt(ctx context.Context, attempt *Attempt) error

	// GetAttempt returns the attempt without answers, or (nil, nil).
	GetAttempt(ctx context.Context, attemptID string) (*Attempt, error)

	// ListAttempts returns the learner's attempts on the quiz by attempt_number ascending.
	ListAttempts(ctx context.Context, quizID, learnerID string) ([]*Attempt, error)

	// MarkSubmitted writes the score fields only if the attempt has not been
	// submitted yet. It reports whether this call performed the transition.
	MarkSubmitted(ctx context.Context, attempt *Attempt) (bool, error)

	// SaveAnswers bulk-inserts graded answers.
	SaveAnswers(ctx context.Context, answers []*Answer) error

	// GetAnswers returns the answers of an attempt.
	GetAnswers(ctx context.Context, attemptID string) ([]*Answer, error)
}

// EnrollmentRepository answers the external enrollment lookup.
type EnrollmentRepository interface {
	// IsEnrolled reports whether the learner has any enrollment in the program.
	IsEnrolled(ctx context.Context, learnerID, programID string) (bool, error)
}
