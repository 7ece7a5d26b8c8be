package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/events"
	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
	"github.com/edustack/quiz-service/internal/repositories/postgres"
	"github.com/edustack/quiz-service/internal/validator"
	"github.com/edustack/quiz-service/pkg"
)

// testEnv runs the real service stack over an in-memory sqlite database.
type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	attempts  AttemptService
	grading   GradingService
	quizzes   QuizService
	reports   ReportService
	publisher *events.MockEventPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	// A fresh connection would see a fresh in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := pkg.Migrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})

	grading := NewGradingService(db, repo, logger, v)

	return &testEnv{
		db:        db,
		repo:      repo,
		attempts:  NewAttemptService(repo, db, logger, v, grading, publisher),
		grading:   grading,
		quizzes:   NewQuizService(repo, db, logger),
		reports:   NewReportService(repo, db, logger),
		publisher: publisher,
	}
}

type quizFixtureOpts struct {
	published    bool
	dueAt        *time.Time
	attemptsMax  *int
	timeLimitSec *int
	shuffle      bool
}

// seedQuiz creates a two-question quiz: Q1 worth 2 points (first option
// correct), Q2 worth 3 points (second option correct).
func (e *testEnv) seedQuiz(t *testing.T, opts quizFixtureOpts) *models.Quiz {
	t.Helper()

	quiz := &models.Quiz{
		LectureID:        1,
		Title:            "Basics of Networking",
		IsPublished:      opts.published,
		DueAt:            opts.dueAt,
		AttemptsAllowed:  opts.attemptsMax,
		TimeLimitSec:     opts.timeLimitSec,
		ShuffleQuestions: opts.shuffle,
		GradingPolicy:    models.GradingHighest,
	}
	if err := e.db.Create(quiz).Error; err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}

	q1 := &models.Question{QuizID: quiz.ID, Type: models.SingleChoice, Prompt: "What does TCP stand for?", Points: 2, Position: 1}
	q2 := &models.Question{QuizID: quiz.ID, Type: models.SingleChoice, Prompt: "Which layer does IP live on?", Points: 3, Position: 2}
	for _, q := range []*models.Question{q1, q2} {
		if err := e.db.Create(q).Error; err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
	}

	options := []*models.Option{
		{QuestionID: q1.ID, Content: "Transmission Control Protocol", IsCorrect: true, Position: 1},
		{QuestionID: q1.ID, Content: "Total Connection Pool", Position: 2},
		{QuestionID: q2.ID, Content: "Physical", Position: 1},
		{QuestionID: q2.ID, Content: "Network", IsCorrect: true, Position: 2},
	}
	for _, o := range options {
		if err := e.db.Create(o).Error; err != nil {
			t.Fatalf("failed to create option: %v", err)
		}
	}

	loaded, err := e.repo.Quiz().GetByIDWithQuestions(context.Background(), nil, quiz.ID)
	if err != nil {
		t.Fatalf("failed to reload quiz: %v", err)
	}
	return loaded
}

// backdateAttempt moves an attempt's start time into the past.
func (e *testEnv) backdateAttempt(t *testing.T, attemptID uint, by time.Duration) {
	t.Helper()
	if err := e.db.Model(&models.QuizAttempt{}).
		Where("id = ?", attemptID).
		Update("started_at", time.Now().UTC().Add(-by)).Error; err != nil {
		t.Fatalf("failed to backdate attempt: %v", err)
	}
}

func intPtr(v int) *int              { return &v }
func timePtr(v time.Time) *time.Time { return &v }
