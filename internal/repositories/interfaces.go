package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	LectureID *uint  `json:"lecture_id"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "title", "due_at"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Status    *models.AttemptStatus `json:"status"`
	QuizID    *uint                 `json:"quiz_id"`
	StudentID *string               `json:"student_id"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type AttemptStats struct {
	TotalAttempts   int                          `json:"total_attempts"`
	StatusBreakdown map[models.AttemptStatus]int `json:"status_breakdown"`
	AverageScore    float64                      `json:"average_score"`
	HighestScore    float64                      `json:"highest_score"`
}

// AnswerKeyEntry is one row of a quiz's resolved answer key.
type AnswerKeyEntry struct {
	QuestionID      uint    `json:"question_id"`
	Points          float64 `json:"points"`
	CorrectOptionID uint    `json:"correct_option_id"`
}

// ===== REPOSITORY INTERFACES =====

// All methods accept an optional tx; a nil tx runs against the base
// connection.

type QuizRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	ListPublished(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)

	// GetAnswerKey returns points and the designated correct option per
	// question. Questions without a correct option have no entry; when data
	// corruption leaves several options marked correct, the one with the
	// lowest position wins.
	GetAnswerKey(ctx context.Context, tx *gorm.DB, quizID uint) (map[uint]AnswerKeyEntry, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error

	CountByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)

	// MarkSubmitted flips status from in-progress to submitted and stamps the
	// final score in one compare-and-set update. Returns false when the
	// attempt was not in progress anymore.
	MarkSubmitted(ctx context.Context, tx *gorm.DB, id uint, submittedAt time.Time, score float64, endReason string) (bool, error)

	// GetInProgressWithTimeLimit lists open attempts on time-limited quizzes
	// for the expiry sweep. Deadline math happens in the caller so the query
	// stays dialect-neutral.
	GetInProgressWithTimeLimit(ctx context.Context, tx *gorm.DB, limit int) ([]*models.QuizAttempt, error)

	GetStatsByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (*AttemptStats, error)
}

type AnswerRepository interface {
	// Upsert inserts or replaces the selection for (attempt_id, question_id).
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.AttemptAnswer) error
	Update(ctx context.Context, tx *gorm.DB, answer *models.AttemptAnswer) error
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.AttemptAnswer, error)
}
