package models

import (
	"database/sql"
	"time"
)

// Attempt is a row of the attempts table.
type Attempt struct {
	ID               string          `db:"id"`
	QuizID           string          `db:"quiz_id"`
	LearnerID        string          `db:"learner_id"`
	AttemptNumber    int             `db:"attempt_number"`
	MaxPossibleScore int             `db:"max_possible_score"`
	TotalScore       sql.NullInt64   `db:"total_score"`
	Percentage       sql.NullFloat64 `db:"percentage"`
	IsPassed         NullFlag        `db:"is_passed"`
	StartedAt        time.Time       `db:"started_at"`
	SubmittedAt      sql.NullTime    `db:"submitted_at"`
	TimeTakenMinutes sql.NullInt64   `db:"time_taken_minutes"`
}

// Answer is a row of the answers table.
type Answer struct {
	ID               string         `db:"id"`
	AttemptID        string         `db:"attempt_id"`
	QuestionID       string         `db:"question_id"`
	SelectedOptionID sql.NullString `db:"selected_option_id"`
	AnswerText       sql.NullString `db:"answer_text"`
	IsCorrect        Flag           `db:"is_correct"`
	PointsEarned     int            `db:"points_earned"`
}
