package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/repository/models"
	"academy-quiz/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	quizColumns     = `id, program_id, title, time_limit_minutes, passing_score, shuffle_questions, show_results_immediately, max_attempts, is_active, total_questions, created_at, updated_at`
	questionColumns = `id, quiz_id, question_type, question_text, points, sort_order, created_at, updated_at`
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	return &domain.Quiz{
		ID:                     m.ID,
		ProgramID:              m.ProgramID,
		Title:                  m.Title,
		TimeLimitMinutes:       util.NullInt64ToIntPtr(m.TimeLimitMinutes),
		PassingScore:           m.PassingScore,
		ShuffleQuestions:       bool(m.ShuffleQuestions),
		ShowResultsImmediately: bool(m.ShowResultsImmediately),
		MaxAttempts:            m.MaxAttempts,
		IsActive:               bool(m.IsActive),
		TotalQuestions:         m.TotalQuestions,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:                     q.ID,
		ProgramID:              q.ProgramID,
		Title:                  q.Title,
		TimeLimitMinutes:       util.IntPtrToNullInt64(q.TimeLimitMinutes),
		PassingScore:           q.PassingScore,
		ShuffleQuestions:       models.Flag(q.ShuffleQuestions),
		ShowResultsImmediately: models.Flag(q.ShowResultsImmediately),
		MaxAttempts:            q.MaxAttempts,
		IsActive:               models.Flag(q.IsActive),
		TotalQuestions:         q.TotalQuestions,
		CreatedAt:              q.CreatedAt,
		UpdatedAt:              q.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:           m.ID,
		QuizID:       m.QuizID,
		Type:         domain.QuestionType(m.QuestionType),
		QuestionText: m.QuestionText,
		Points:       m.Points,
		Order:        m.SortOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toDomainOption(m *models.Option) *domain.Option {
	return &domain.Option{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		OptionText: m.OptionText,
		IsCorrect:  bool(m.IsCorrect),
		Order:      m.SortOrder,
	}
}

func scanQuiz(row interface{ Scan(...interface{}) error }, m *models.Quiz) error {
	return row.Scan(
		&m.ID,
		&m.ProgramID,
		&m.Title,
		&m.TimeLimitMinutes,
		&m.PassingScore,
		&m.ShuffleQuestions,
		&m.ShowResultsImmediately,
		&m.MaxAttempts,
		&m.IsActive,
		&m.TotalQuestions,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

// GetQuizDefinition implements domain.QuizReader
func (r *sqlxQuizRepository) GetQuizDefinition(ctx context.Context, quizID string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)

	var mq models.Quiz
	query := exec.Rebind(`SELECT ` + quizColumns + ` FROM quizzes WHERE id = ?`)
	if err := scanQuiz(exec.QueryRowxContext(ctx, query, quizID), &mq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %s: %w", quizID, err)
	}
	quiz := toDomainQuiz(&mq)

	questions, err := r.listQuestions(ctx, exec, quizID)
	if err != nil {
		return nil, err
	}
	options, err := r.listOptions(ctx, exec, quizID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for _, opt := range options {
		if q, ok := byID[opt.QuestionID]; ok {
			q.Options = append(q.Options, opt)
		}
	}
	quiz.Questions = questions
	return quiz, nil
}

func (r *sqlxQuizRepository) listQuestions(ctx context.Context, exec DBTX, quizID string) ([]*domain.Question, error) {
	query := exec.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE quiz_id = ? ORDER BY sort_order, id`)
	rows, err := exec.QueryxContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for quiz %s: %w", quizID, err)
	}
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		var m models.Question
		if err := rows.Scan(&m.ID, &m.QuizID, &m.QuestionType, &m.QuestionText, &m.Points, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, toDomainQuestion(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, nil
}

func (r *sqlxQuizRepository) listOptions(ctx context.Context, exec DBTX, quizID string) ([]*domain.Option, error) {
	query := exec.Rebind(`SELECT o.id, o.question_id, o.option_text, o.is_correct, o.sort_order
		FROM options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.quiz_id = ?
		ORDER BY o.question_id, o.sort_order, o.id`)
	rows, err := exec.QueryxContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options for quiz %s: %w", quizID, err)
	}
	defer rows.Close()

	var options []*domain.Option
	for rows.Next() {
		var m models.Option
		if err := rows.Scan(&m.ID, &m.QuestionID, &m.OptionText, &m.IsCorrect, &m.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, toDomainOption(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

// SaveQuiz implements domain.QuizRepository
func (r *sqlxQuizRepository) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	now := time.Now().UTC()
	quiz.CreatedAt, quiz.UpdatedAt = now, now
	m := fromDomainQuiz(quiz)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO quizzes (` + quizColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := exec.ExecContext(ctx, query,
		m.ID,
		m.ProgramID,
		m.Title,
		m.TimeLimitMinutes,
		m.PassingScore,
		m.ShuffleQuestions,
		m.ShowResultsImmediately,
		m.MaxAttempts,
		m.IsActive,
		m.TotalQuestions,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

// AddQuestion implements domain.QuizRepository
func (r *sqlxQuizRepository) AddQuestion(ctx context.Context, question *domain.Question) error {
	if question.ID == "" {
		question.ID = util.NewULID()
	}
	now := time.Now().UTC()
	question.CreatedAt, question.UpdatedAt = now, now

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO questions (` + questionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query,
		question.ID,
		question.QuizID,
		string(question.Type),
		question.QuestionText,
		question.Points,
		question.Order,
		question.CreatedAt,
		question.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}

	optionQuery := exec.Rebind(`INSERT INTO options (id, question_id, option_text, is_correct, sort_order) VALUES (?, ?, ?, ?, ?)`)
	for i, opt := range question.Options {
		if opt.ID == "" {
			opt.ID = util.NewULID()
		}
		opt.QuestionID = question.ID
		if opt.Order == 0 {
			opt.Order = i + 1
		}
		if _, err := exec.ExecContext(ctx, optionQuery, opt.ID, opt.QuestionID, opt.OptionText, models.Flag(opt.IsCorrect), opt.Order); err != nil {
			return fmt.Errorf("failed to save option %d of question %s: %w", i+1, question.ID, err)
		}
	}
	return nil
}

// DeleteQuestion implements domain.QuizRepository
func (r *sqlxQuizRepository) DeleteQuestion(ctx context.Context, quizID, questionID string) (bool, error) {
	exec := GetExecutor(ctx, r.db)

	if _, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM options WHERE question_id = ?`), questionID); err != nil {
		return false, fmt.Errorf("failed to delete options of question %s: %w", questionID, err)
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM questions WHERE id = ? AND quiz_id = ?`), questionID, quizID)
	if err != nil {
		return false, fmt.Errorf("failed to delete question %s: %w", questionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateQuestionOrders implements domain.QuizRepository
func (r *sqlxQuizRepository) UpdateQuestionOrders(ctx context.Context, questions []*domain.Question) error {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE questions SET sort_order = ?, updated_at = ? WHERE id = ?`)
	now := time.Now().UTC()
	for _, q := range questions {
		if _, err := exec.ExecContext(ctx, query, q.Order, now, q.ID); err != nil {
			return fmt.Errorf("failed to reorder question %s: %w", q.ID, err)
		}
		q.UpdatedAt = now
	}
	return nil
}

// SetTotalQuestions implements domain.QuizRepository
func (r *sqlxQuizRepository) SetTotalQuestions(ctx context.Context, quizID string, total int) error {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE quizzes SET total_questions = ?, updated_at = ? WHERE id = ?`)
	if _, err := exec.ExecContext(ctx, query, total, time.Now().UTC(), quizID); err != nil {
		return fmt.Errorf("failed to update total_questions of quiz %s: %w", quizID, err)
	}
	return nil
}
