package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"academy-quiz/cmd/seed_initial_data/internal/seedmodels"
	"academy-quiz/internal/config"
	"academy-quiz/internal/database"
	"academy-quiz/internal/domain"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/repository"
	"academy-quiz/internal/service"
	"academy-quiz/internal/validation"

	"go.uber.org/zap"
)

const defaultSeedFilePath = "configs/seed_data/initial_quizzes.json"

func main() {
	seedFilePath := flag.String("file", defaultSeedFilePath, "path to the JSON seed file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// If logger is not initialized yet, use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding process...")
	db, err := database.Connect(ctx, cfg.DB, cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	f, err := os.Open(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to open seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}
	defer f.Close()

	seed, err := seedmodels.Decode(f, validation.NewValidator())
	if err != nil {
		log.Fatal("Failed to load seed data", zap.Error(err))
	}
	log.Info("Loaded seed data", zap.Int("quizzes", len(seed.Quizzes)), zap.Int("enrollments", len(seed.Enrollments)))

	quizRepo := repository.NewSQLXQuizRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)
	quizzes := service.NewQuizService(
		txManager,
		quizRepo,
		service.NewQuizDefinitionCache(quizRepo, nil, 0, nil),
		service.NewEnrollmentGate(quizRepo, repository.NewSQLXEnrollmentRepository(db)),
	)

	failed := 0
	for _, sq := range seed.Quizzes {
		if err := seedQuiz(ctx, txManager, quizzes, sq); err != nil {
			failed++
			log.Error("Error seeding quiz, transaction rolled back", zap.String("title", sq.Title), zap.Error(err))
			continue
		}
		log.Info("Seeded quiz", zap.String("title", sq.Title), zap.Int("questions", len(sq.Questions)))
	}

	enrollments := repository.NewSQLXEnrollmentWriter(db)
	for _, e := range seed.Enrollments {
		created, err := enrollments.Enroll(ctx, e.LearnerID, e.ProgramID, e.Status)
		if err != nil {
			failed++
			log.Error("Error seeding enrollment", zap.String("learner_id", e.LearnerID), zap.String("program_id", e.ProgramID), zap.Error(err))
			continue
		}
		if !created {
			log.Info("Enrollment exists", zap.String("learner_id", e.LearnerID), zap.String("program_id", e.ProgramID))
		}
	}

	if failed > 0 {
		log.Warn("Initial data seeding finished with errors", zap.Int("failed", failed))
		return
	}
	log.Info("Initial data seeding process completed.")
}

// seedQuiz creates the quiz and its questions in one transaction.
func seedQuiz(ctx context.Context, tx domain.TransactionManager, quizzes service.QuizService, sq seedmodels.SeedQuiz) error {
	return tx.WithTransaction(ctx, func(txCtx context.Context) error {
		quiz, err := quizzes.CreateQuiz(txCtx, &sq.CreateQuizRequest)
		if err != nil {
			return err
		}
		for i := range sq.Questions {
			if _, err := quizzes.AddQuestion(txCtx, quiz.ID, &sq.Questions[i]); err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
		}
		return nil
	})
}
