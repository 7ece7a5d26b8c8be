package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
)

type quizService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) QuizService {
	return &quizService{repo: repo, db: db, logger: logger}
}

func (s *quizService) ListPublished(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error) {
	quizzes, total, err := s.repo.Quiz().ListPublished(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	response := &QuizListResponse{
		Quizzes: make([]*QuizResponse, 0, len(quizzes)),
		Total:   total,
	}
	for _, quiz := range quizzes {
		response.Quizzes = append(response.Quizzes, projectQuiz(quiz, false))
	}
	return response, nil
}

// GetForTaking returns the quiz with its questions and options, correctness
// withheld. Unpublished quizzes read as missing.
func (s *quizService) GetForTaking(ctx context.Context, quizID uint) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotFound
	}
	return projectQuiz(quiz, true), nil
}

func projectQuiz(quiz *models.Quiz, withQuestions bool) *QuizResponse {
	response := &QuizResponse{
		ID:               quiz.ID,
		LectureID:        quiz.LectureID,
		Title:            quiz.Title,
		TimeLimitSec:     quiz.TimeLimitSec,
		AttemptsAllowed:  quiz.AttemptsAllowed,
		DueAt:            quiz.DueAt,
		ShuffleQuestions: quiz.ShuffleQuestions,
		GradingPolicy:    quiz.GradingPolicy,
	}
	if withQuestions {
		response.Questions = buildQuestionPayload(quiz)
	}
	return response
}
