package services

import (
	"context"
	"time"

	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

type SubmitAnswerRequest struct {
	QuestionID       uint `json:"question_id" validate:"required"`
	SelectedOptionID uint `json:"selected_option_id" validate:"required"`
}

// AttemptMeta is request-level context captured on start for the audit
// trail. Grading never reads it.
type AttemptMeta struct {
	IPAddress string
	UserAgent string
}

// AttemptResponse is the attempt projection. Score, per-answer correctness
// and awarded points are nil while the attempt is in progress, whatever the
// stored rows say.
type AttemptResponse struct {
	ID          uint                  `json:"id"`
	QuizID      uint                  `json:"quiz_id"`
	StudentID   string                `json:"student_id"`
	Status      models.AttemptStatus  `json:"status"`
	StartedAt   time.Time             `json:"started_at"`
	SubmittedAt *time.Time            `json:"submitted_at,omitempty"`
	MaxScore    float64               `json:"max_score"`
	Score       *float64              `json:"score,omitempty"`
	EndReason   *string               `json:"end_reason,omitempty"`
	Answers     []AnswerView          `json:"answers,omitempty"`
	Questions   []*QuestionForAttempt `json:"questions,omitempty"`
}

type AnswerView struct {
	QuestionID       uint     `json:"question_id"`
	SelectedOptionID uint     `json:"selected_option_id"`
	IsCorrect        *bool    `json:"is_correct,omitempty"`
	PointsAwarded    *float64 `json:"points_awarded,omitempty"`
}

// QuestionForAttempt is the take-side view of a question: option correctness
// never leaves the server through it.
type QuestionForAttempt struct {
	ID       uint                `json:"id"`
	Type     models.QuestionType `json:"type"`
	Prompt   string              `json:"prompt"`
	Points   float64             `json:"points"`
	Position int                 `json:"position"`
	Options  []OptionForAttempt  `json:"options"`
}

type OptionForAttempt struct {
	ID       uint   `json:"id"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type AttemptListResponse struct {
	Attempts []*AttemptResponse `json:"attempts"`
	Total    int64              `json:"total"`
}

type TimeRemainingResponse struct {
	AttemptID        uint `json:"attempt_id"`
	TimeRemainingSec *int `json:"time_remaining_sec"` // null when the quiz has no limit
}

type QuizResponse struct {
	ID               uint                  `json:"id"`
	LectureID        uint                  `json:"lecture_id"`
	Title            string                `json:"title"`
	TimeLimitSec     *int                  `json:"time_limit_sec,omitempty"`
	AttemptsAllowed  *int                  `json:"attempts_allowed,omitempty"`
	DueAt            *time.Time            `json:"due_at,omitempty"`
	ShuffleQuestions bool                  `json:"shuffle_questions"`
	GradingPolicy    models.GradingPolicy  `json:"grading_policy"`
	Questions        []*QuestionForAttempt `json:"questions,omitempty"`
}

type QuizListResponse struct {
	Quizzes []*QuizResponse `json:"quizzes"`
	Total   int64           `json:"total"`
}

// ===== SERVICE INTERFACES =====

type AttemptService interface {
	// CanStart runs the eligibility gate without creating anything.
	CanStart(ctx context.Context, quizID uint, studentID string) error

	// Start creates an in-progress attempt and returns it with the question
	// payload, shuffled per call when the quiz asks for it.
	Start(ctx context.Context, quizID uint, studentID string, meta AttemptMeta) (*AttemptResponse, error)

	// RecordAnswer idempotently upserts one selection without grading it.
	RecordAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, studentID string) error

	// Submit grades every recorded answer and finalizes the attempt.
	Submit(ctx context.Context, attemptID uint, studentID string) (*AttemptResponse, error)

	// GetByID projects the attempt for its owner or staff.
	GetByID(ctx context.Context, attemptID uint, viewerID string, viewerRole models.UserRole) (*AttemptResponse, error)

	ListByStudent(ctx context.Context, studentID string, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	ListByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) (*AttemptListResponse, error)

	TimeRemaining(ctx context.Context, attemptID uint, studentID string) (*TimeRemainingResponse, error)
}

type GradingService interface {
	// ResolveAnswerKey returns the quiz's current key.
	ResolveAnswerKey(ctx context.Context, quizID uint) (map[uint]repositories.AnswerKeyEntry, error)

	// GradeAttempt finalizes the attempt in a single transaction and returns
	// the graded row. ErrAttemptAlreadySubmitted when another submit won.
	GradeAttempt(ctx context.Context, attemptID uint, endReason string) (*models.QuizAttempt, error)
}

type QuizService interface {
	ListPublished(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error)
	GetForTaking(ctx context.Context, quizID uint) (*QuizResponse, error)
}

type ReportService interface {
	GetAttemptStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error)

	// ExportAttempts renders the quiz's attempts as an xlsx workbook.
	ExportAttempts(ctx context.Context, quizID uint) ([]byte, string, error)
}
