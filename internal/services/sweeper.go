package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edustack/quiz-service/internal/events"
	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
)

const sweepBatchSize = 200

// ExpirySweeper force-submits in-progress attempts whose time limit has
// passed, so abandoned tabs still end in a graded attempt. The lazy check in
// RecordAnswer handles the common case; the sweep is the backstop.
type ExpirySweeper struct {
	repo      repositories.Repository
	grading   GradingService
	publisher events.Publisher
	logger    *slog.Logger
	interval  time.Duration
	cron      *cron.Cron
}

func NewExpirySweeper(repo repositories.Repository, grading GradingService, publisher events.Publisher, logger *slog.Logger, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		repo:      repo,
		grading:   grading,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
	}
}

func (s *ExpirySweeper) Start() error {
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("Expiry sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	c.Start()
	s.cron = c
	s.logger.Info("Expiry sweeper started", "interval", s.interval.String())
	return nil
}

func (s *ExpirySweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info("Expiry sweeper stopped")
}

// Sweep grades every expired attempt it finds. A single failing attempt does
// not abort the batch.
func (s *ExpirySweeper) Sweep(ctx context.Context) error {
	attempts, err := s.repo.Attempt().GetInProgressWithTimeLimit(ctx, nil, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("failed to load open attempts: %w", err)
	}

	now := time.Now()
	swept := 0
	for _, attempt := range attempts {
		if !attemptExpired(attempt, &attempt.Quiz, now) {
			continue
		}

		graded, err := s.grading.GradeAttempt(ctx, attempt.ID, models.AttemptEndReasonTimeout)
		if err != nil {
			// A student submit racing the sweep is fine; the attempt ended
			// either way.
			if errors.Is(err, ErrAttemptAlreadySubmitted) {
				continue
			}
			s.logger.Error("Failed to force-submit expired attempt",
				"attempt_id", attempt.ID,
				"error", err)
			continue
		}
		swept++

		data := events.AttemptEventData{
			AttemptID: graded.ID,
			QuizID:    graded.QuizID,
			StudentID: graded.StudentID,
			Score:     graded.Score,
			MaxScore:  &graded.MaxScore,
			EndReason: models.AttemptEndReasonTimeout,
		}
		if err := s.publisher.Publish(ctx, events.NewEvent(events.AttemptTimedOut, data)); err != nil {
			s.logger.Error("Failed to publish timeout event", "attempt_id", graded.ID, "error", err)
		}
	}

	if swept > 0 {
		s.logger.Info("Expiry sweep completed", "expired", swept, "scanned", len(attempts))
	}
	return nil
}
