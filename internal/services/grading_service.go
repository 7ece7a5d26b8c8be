package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
	"github.com/edustack/quiz-service/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGradingService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) GradingService {
	return &gradingService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *gradingService) ResolveAnswerKey(ctx context.Context, quizID uint) (map[uint]repositories.AnswerKeyEntry, error) {
	key, err := s.repo.Quiz().GetAnswerKey(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve answer key: %w", err)
	}
	return key, nil
}

// GradeAttempt finalizes the attempt: every recorded answer gets its
// correctness and points, the total is stamped on the attempt, and the status
// flips to submitted. All of it happens in one transaction; the
// compare-and-set on status guarantees a concurrent submit grades at most
// once.
func (s *gradingService) GradeAttempt(ctx context.Context, attemptID uint, endReason string) (*models.QuizAttempt, error) {
	var graded *models.QuizAttempt

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		attempt, err := txRepo.Attempt().GetByID(ctx, nil, attemptID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAttemptNotFound
			}
			return fmt.Errorf("failed to get attempt: %w", err)
		}

		if attempt.Status == models.AttemptSubmitted {
			return ErrAttemptAlreadySubmitted
		}

		// The key is resolved at submit time. Questions added after the
		// attempt started can award points; MaxScore keeps the denominator
		// the student saw.
		key, err := txRepo.Quiz().GetAnswerKey(ctx, nil, attempt.QuizID)
		if err != nil {
			return fmt.Errorf("failed to resolve answer key: %w", err)
		}

		answers, err := txRepo.Answer().GetByAttempt(ctx, nil, attemptID)
		if err != nil {
			return fmt.Errorf("failed to load answers: %w", err)
		}

		var score float64
		for _, answer := range answers {
			entry, hasKey := key[answer.QuestionID]
			correct := hasKey && answer.SelectedOptionID == entry.CorrectOptionID
			points := 0.0
			if correct {
				points = entry.Points
			}
			answer.IsCorrect = &correct
			answer.PointsAwarded = &points
			score += points
		}

		submittedAt := time.Now().UTC()
		won, err := txRepo.Attempt().MarkSubmitted(ctx, nil, attemptID, submittedAt, score, endReason)
		if err != nil {
			return fmt.Errorf("failed to finalize attempt: %w", err)
		}
		if !won {
			return ErrAttemptAlreadySubmitted
		}

		for _, answer := range answers {
			if err := txRepo.Answer().Update(ctx, nil, answer); err != nil {
				return fmt.Errorf("failed to grade answer %d: %w", answer.ID, err)
			}
		}

		attempt.Status = models.AttemptSubmitted
		attempt.SubmittedAt = &submittedAt
		attempt.Score = &score
		attempt.EndReason = &endReason
		attempt.Answers = nil
		for _, answer := range answers {
			attempt.Answers = append(attempt.Answers, *answer)
		}
		graded = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attempt graded",
		"attempt_id", graded.ID,
		"quiz_id", graded.QuizID,
		"score", *graded.Score,
		"max_score", graded.MaxScore,
		"end_reason", endReason)
	return graded, nil
}
