package service

import (
	"context"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/logger"

	"go.uber.org/zap"
)

// EnrollmentGate decides whether a learner may attempt or preview a quiz.
type EnrollmentGate interface {
	// CanAttempt resolves the quiz's program and reports whether the learner is enrolled in it.
	CanAttempt(ctx context.Context, learnerID, quizID string) (bool, error)
	// Authorize returns NOT_ENROLLED for learners without an enrollment. Staff always pass.
	Authorize(ctx context.Context, viewer domain.Viewer, quiz *domain.Quiz) error
}

type enrollmentGate struct {
	quizzes     domain.QuizReader
	enrollments domain.EnrollmentRepository
}

func NewEnrollmentGate(quizzes domain.QuizReader, enrollments domain.EnrollmentRepository) EnrollmentGate {
	return &enrollmentGate{quizzes: quizzes, enrollments: enrollments}
}

func (g *enrollmentGate) CanAttempt(ctx context.Context, learnerID, quizID string) (bool, error) {
	quiz, err := g.quizzes.GetQuizDefinition(ctx, quizID)
	if err != nil {
		return false, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return false, domain.NewQuizNotFoundError(quizID)
	}
	return g.isEnrolled(ctx, learnerID, quiz)
}

func (g *enrollmentGate) Authorize(ctx context.Context, viewer domain.Viewer, quiz *domain.Quiz) error {
	if viewer.IsStaff() {
		return nil
	}
	ok, err := g.isEnrolled(ctx, viewer.UserID, quiz)
	if err != nil {
		return err
	}
	if !ok {
		logger.Get().Info("Enrollment gate rejected learner",
			zap.String("learner_id", viewer.UserID),
			zap.String("quiz_id", quiz.ID),
			zap.String("program_id", quiz.ProgramID))
		return domain.NewNotEnrolledError(quiz.ID)
	}
	return nil
}

func (g *enrollmentGate) isEnrolled(ctx context.Context, learnerID string, quiz *domain.Quiz) (bool, error) {
	ok, err := g.enrollments.IsEnrolled(ctx, learnerID, quiz.ProgramID)
	if err != nil {
		return false, domain.NewInternalError("failed to check enrollment", err)
	}
	return ok, nil
}
