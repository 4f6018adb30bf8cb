package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-quiz/internal/database"
	"academy-quiz/internal/domain"
	"academy-quiz/internal/repository/models"
	"academy-quiz/internal/util"

	"github.com/jmoiron/sqlx"
)

const attemptColumns = `id, quiz_id, learner_id, attempt_number, max_possible_score, total_score, percentage, is_passed, started_at, submitted_at, time_taken_minutes`

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.Attempt) *domain.Attempt {
	return &domain.Attempt{
		ID:               m.ID,
		QuizID:           m.QuizID,
		LearnerID:        m.LearnerID,
		AttemptNumber:    m.AttemptNumber,
		MaxPossibleScore: m.MaxPossibleScore,
		TotalScore:       util.NullInt64ToIntPtr(m.TotalScore),
		Percentage:       util.NullFloat64ToPtr(m.Percentage),
		IsPassed:         m.IsPassed.Ptr(),
		StartedAt:        m.StartedAt,
		SubmittedAt:      util.NullTimeToPtr(m.SubmittedAt),
		TimeTakenMinutes: util.NullInt64ToIntPtr(m.TimeTakenMinutes),
	}
}

func fromDomainAttempt(a *domain.Attempt) *models.Attempt {
	return &models.Attempt{
		ID:               a.ID,
		QuizID:           a.QuizID,
		LearnerID:        a.LearnerID,
		AttemptNumber:    a.AttemptNumber,
		MaxPossibleScore: a.MaxPossibleScore,
		TotalScore:       util.IntPtrToNullInt64(a.TotalScore),
		Percentage:       util.Float64PtrToNullFloat64(a.Percentage),
		IsPassed:         models.NullFlagFrom(a.IsPassed),
		StartedAt:        a.StartedAt,
		SubmittedAt:      util.TimePtrToNullTime(a.SubmittedAt),
		TimeTakenMinutes: util.IntPtrToNullInt64(a.TimeTakenMinutes),
	}
}

func toDomainAnswer(m *models.Answer) *domain.Answer {
	return &domain.Answer{
		ID:               m.ID,
		AttemptID:        m.AttemptID,
		QuestionID:       m.QuestionID,
		SelectedOptionID: util.NullStringToPtr(m.SelectedOptionID),
		AnswerText:       util.NullStringToPtr(m.AnswerText),
		IsCorrect:        bool(m.IsCorrect),
		PointsEarned:     m.PointsEarned,
	}
}

func scanAttempt(row interface{ Scan(...interface{}) error }) (*domain.Attempt, error) {
	var m models.Attempt
	if err := row.Scan(
		&m.ID,
		&m.QuizID,
		&m.LearnerID,
		&m.AttemptNumber,
		&m.MaxPossibleScore,
		&m.TotalScore,
		&m.Percentage,
		&m.IsPassed,
		&m.StartedAt,
		&m.SubmittedAt,
		&m.TimeTakenMinutes,
	); err != nil {
		return nil, err
	}
	return toDomainAttempt(&m), nil
}

// CountAttempts implements domain.AttemptRepository
func (r *sqlxAttemptRepository) CountAttempts(ctx context.Context, quizID, learnerID string) (int, error) {
	exec := GetExecutor(ctx, r.db)
	var count int
	query := exec.Rebind(`SELECT COUNT(*) FROM attempts WHERE quiz_id = ? AND learner_id = ?`)
	if err := exec.QueryRowxContext(ctx, query, quizID, learnerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// CreateAttempt implements domain.AttemptRepository
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = util.NewULID()
	}
	m := fromDomainAttempt(attempt)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO attempts (` + attemptColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := exec.ExecContext(ctx, query,
		m.ID,
		m.QuizID,
		m.LearnerID,
		m.AttemptNumber,
		m.MaxPossibleScore,
		m.TotalScore,
		m.Percentage,
		m.IsPassed,
		m.StartedAt,
		m.SubmittedAt,
		m.TimeTakenMinutes,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("attempt %d for learner %s: %w", attempt.AttemptNumber, attempt.LearnerID, domain.ErrAttemptNumberTaken)
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetAttempt implements domain.AttemptRepository
func (r *sqlxAttemptRepository) GetAttempt(ctx context.Context, attemptID string) (*domain.Attempt, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + attemptColumns + ` FROM attempts WHERE id = ?`)
	attempt, err := scanAttempt(exec.QueryRowxContext(ctx, query, attemptID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt %s: %w", attemptID, err)
	}
	return attempt, nil
}

// ListAttempts implements domain.AttemptRepository
func (r *sqlxAttemptRepository) ListAttempts(ctx context.Context, quizID, learnerID string) ([]*domain.Attempt, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + attemptColumns + ` FROM attempts WHERE quiz_id = ? AND learner_id = ? ORDER BY attempt_number ASC`)
	rows, err := exec.QueryxContext(ctx, query, quizID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []*domain.Attempt{}
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return attempts, nil
}

// MarkSubmitted implements domain.AttemptRepository
func (r *sqlxAttemptRepository) MarkSubmitted(ctx context.Context, attempt *domain.Attempt) (bool, error) {
	m := fromDomainAttempt(attempt)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE attempts
		SET total_score = ?, percentage = ?, is_passed = ?, submitted_at = ?, time_taken_minutes = ?
		WHERE id = ? AND submitted_at IS NULL`)
	res, err := exec.ExecContext(ctx, query,
		m.TotalScore,
		m.Percentage,
		m.IsPassed,
		m.SubmittedAt,
		m.TimeTakenMinutes,
		m.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to submit attempt %s: %w", attempt.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// SaveAnswers implements domain.AttemptRepository
func (r *sqlxAttemptRepository) SaveAnswers(ctx context.Context, answers []*domain.Answer) error {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO answers (id, attempt_id, question_id, selected_option_id, answer_text, is_correct, points_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, a := range answers {
		if a.ID == "" {
			a.ID = util.NewULID()
		}
		if _, err := exec.ExecContext(ctx, query,
			a.ID,
			a.AttemptID,
			a.QuestionID,
			util.StringPtrToNullString(a.SelectedOptionID),
			util.StringPtrToNullString(a.AnswerText),
			models.Flag(a.IsCorrect),
			a.PointsEarned,
		); err != nil {
			return fmt.Errorf("failed to save answer for question %s: %w", a.QuestionID, err)
		}
	}
	return nil
}

// GetAnswers implements domain.AttemptRepository
func (r *sqlxAttemptRepository) GetAnswers(ctx context.Context, attemptID string) ([]*domain.Answer, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT id, attempt_id, question_id, selected_option_id, answer_text, is_correct, points_earned
		FROM answers WHERE attempt_id = ? ORDER BY id`)
	rows, err := exec.QueryxContext(ctx, query, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers of attempt %s: %w", attemptID, err)
	}
	defer rows.Close()

	answers := []*domain.Answer{}
	for rows.Next() {
		var m models.Answer
		if err := rows.Scan(&m.ID, &m.AttemptID, &m.QuestionID, &m.SelectedOptionID, &m.AnswerText, &m.IsCorrect, &m.PointsEarned); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, toDomainAnswer(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}
	return answers, nil
}
