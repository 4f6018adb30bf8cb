package models

import (
	"database/sql"
	"time"
)

// Quiz is a row of the quizzes table.
type Quiz struct {
	ID                     string        `db:"id"`
	ProgramID              string        `db:"program_id"`
	Title                  string        `db:"title"`
	TimeLimitMinutes       sql.NullInt64 `db:"time_limit_minutes"`
	PassingScore           int           `db:"passing_score"`
	ShuffleQuestions       Flag          `db:"shuffle_questions"`
	ShowResultsImmediately Flag          `db:"show_results_immediately"`
	MaxAttempts            int           `db:"max_attempts"`
	IsActive               Flag          `db:"is_active"`
	TotalQuestions         int           `db:"total_questions"`
	CreatedAt              time.Time     `db:"created_at"`
	UpdatedAt              time.Time     `db:"updated_at"`
}

// Question is a row of the questions table.
type Question struct {
	ID           string    `db:"id"`
	QuizID       string    `db:"quiz_id"`
	QuestionType string    `db:"question_type"`
	QuestionText string    `db:"question_text"`
	Points       int       `db:"points"`
	SortOrder    int       `db:"sort_order"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Option is a row of the options table.
type Option struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	OptionText string `db:"option_text"`
	IsCorrect  Flag   `db:"is_correct"`
	SortOrder  int    `db:"sort_order"`
}
