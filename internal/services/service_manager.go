package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/events"
	"github.com/edustack/quiz-service/internal/repositories"
	"github.com/edustack/quiz-service/internal/validator"
)

// ServiceManager wires every service over shared dependencies.
type ServiceManager interface {
	Attempt() AttemptService
	Grading() GradingService
	Quiz() QuizService
	Report() ReportService
	Sweeper() *ExpirySweeper

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type ServiceManagerConfig struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Publisher events.Publisher

	// SweepInterval is how often the expiry sweeper runs.
	SweepInterval time.Duration
}

type serviceManager struct {
	config ServiceManagerConfig

	attemptService AttemptService
	gradingService GradingService
	quizService    QuizService
	reportService  ReportService
	sweeper        *ExpirySweeper
}

func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	sm := &serviceManager{config: config}

	sm.gradingService = NewGradingService(config.DB, config.Repo, config.Logger, config.Validator)
	sm.attemptService = NewAttemptService(config.Repo, config.DB, config.Logger, config.Validator, sm.gradingService, config.Publisher)
	sm.quizService = NewQuizService(config.Repo, config.DB, config.Logger)
	sm.reportService = NewReportService(config.Repo, config.DB, config.Logger)
	sm.sweeper = NewExpirySweeper(config.Repo, sm.gradingService, config.Publisher, config.Logger, config.SweepInterval)

	return sm
}

func (sm *serviceManager) Attempt() AttemptService { return sm.attemptService }
func (sm *serviceManager) Grading() GradingService { return sm.gradingService }
func (sm *serviceManager) Quiz() QuizService       { return sm.quizService }
func (sm *serviceManager) Report() ReportService   { return sm.reportService }
func (sm *serviceManager) Sweeper() *ExpirySweeper { return sm.sweeper }

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	return sm.config.Repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	if sm.sweeper != nil {
		sm.sweeper.Stop()
	}
	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.config.Logger.Error("Failed to close event publisher", "error", err)
		}
	}
	return sm.config.Repo.Close()
}
