package main

import (
	"context"
	"testing"

	"academy-quiz/cmd/seed_initial_data/internal/seedmodels"
	"academy-quiz/internal/config"
	"academy-quiz/internal/database"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/repository"
	"academy-quiz/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedQuiz(t *testing.T) {
	ctx := context.Background()
	dsn := "file:seed_quiz?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := database.Connect(ctx, config.DBConfig{Driver: config.DriverSQLite}, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(ctx, db, config.DriverSQLite, database.Up))

	quizRepo := repository.NewSQLXQuizRepository(db)
	tx := repository.NewTransactionManagerAdapter(db)
	quizzes := service.NewQuizService(tx, quizRepo,
		service.NewQuizDefinitionCache(quizRepo, nil, 0, nil),
		service.NewEnrollmentGate(quizRepo, repository.NewSQLXEnrollmentRepository(db)))

	countQuizzes := func() int {
		var n int
		require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM quizzes`))
		return n
	}

	good := seedmodels.SeedQuiz{
		CreateQuizRequest: dto.CreateQuizRequest{ProgramID: "prog-1", Title: "Unit 1", PassingScore: 50, MaxAttempts: 1},
		Questions: []dto.AddQuestionRequest{
			{Type: "true_false", QuestionText: "Water is wet", Points: 1, Options: []dto.OptionRequest{{OptionText: "True", IsCorrect: true}, {OptionText: "False"}}},
			{Type: "essay", QuestionText: "Describe water", Points: 4},
		},
	}
	require.NoError(t, seedQuiz(ctx, tx, quizzes, good))
	assert.Equal(t, 1, countQuizzes())

	var total int
	require.NoError(t, db.GetContext(ctx, &total, `SELECT total_questions FROM quizzes WHERE title = 'Unit 1'`))
	assert.Equal(t, 2, total)

	broken := seedmodels.SeedQuiz{
		CreateQuizRequest: dto.CreateQuizRequest{ProgramID: "prog-1", Title: "Unit 2", PassingScore: 50, MaxAttempts: 1},
		Questions: []dto.AddQuestionRequest{
			{Type: "multiple_choice", QuestionText: "Only one option", Points: 1, Options: []dto.OptionRequest{{OptionText: "A", IsCorrect: true}}},
		},
	}
	assert.Error(t, seedQuiz(ctx, tx, quizzes, broken))
	assert.Equal(t, 1, countQuizzes(), "failed quiz is rolled back")
}
