package repository

import (
	"context"
	"fmt"
	"time"

	"academy-quiz/internal/database"
	"academy-quiz/internal/domain"

	"github.com/jmoiron/sqlx"
)

// sqlxEnrollmentRepository reads the enrollments table owned by the program catalog.
type sqlxEnrollmentRepository struct {
	db *sqlx.DB
}

// NewSQLXEnrollmentRepository creates a new instance of sqlxEnrollmentRepository.
func NewSQLXEnrollmentRepository(db *sqlx.DB) domain.EnrollmentRepository {
	return &sqlxEnrollmentRepository{db: db}
}

// IsEnrolled implements domain.EnrollmentRepository. The status column is not consulted.
func (r *sqlxEnrollmentRepository) IsEnrolled(ctx context.Context, learnerID, programID string) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	var count int
	query := exec.Rebind(`SELECT COUNT(*) FROM enrollments WHERE learner_id = ? AND program_id = ?`)
	if err := exec.QueryRowxContext(ctx, query, learnerID, programID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

// EnrollmentWriter records enrollments. Only the seeder writes them; the API reads.
type EnrollmentWriter interface {
	Enroll(ctx context.Context, learnerID, programID, status string) (bool, error)
}

// NewSQLXEnrollmentWriter creates an EnrollmentWriter over db.
func NewSQLXEnrollmentWriter(db *sqlx.DB) EnrollmentWriter {
	return &sqlxEnrollmentRepository{db: db}
}

// Enroll inserts the enrollment and reports false when it already exists.
func (r *sqlxEnrollmentRepository) Enroll(ctx context.Context, learnerID, programID, status string) (bool, error) {
	if status == "" {
		status = "active"
	}
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO enrollments (learner_id, program_id, status, enrolled_at) VALUES (?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query, learnerID, programID, status, time.Now().UTC()); err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to enroll learner %s in program %s: %w", learnerID, programID, err)
	}
	return true, nil
}
