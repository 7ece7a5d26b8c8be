package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/events"
	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
	"github.com/edustack/quiz-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	grading   GradingService
	publisher events.Publisher
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, grading GradingService, publisher events.Publisher) AttemptService {
	return &attemptService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		grading:   grading,
		publisher: publisher,
	}
}

// ===== ELIGIBILITY =====

func (s *attemptService) CanStart(ctx context.Context, quizID uint, studentID string) error {
	_, err := s.eligibleQuiz(ctx, quizID, studentID)
	return err
}

// eligibleQuiz runs the eligibility gate and returns the quiz with its
// questions when the student may start. Unpublished quizzes are reported as
// missing so students cannot probe for drafts.
func (s *attemptService) eligibleQuiz(ctx context.Context, quizID uint, studentID string) (*models.Quiz, error) {
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

	if quiz.DueAt != nil && time.Now().After(*quiz.DueAt) {
		return nil, ErrQuizPastDue
	}

	if quiz.AttemptsAllowed != nil {
		count, err := s.repo.Attempt().CountByQuizAndStudent(ctx, nil, quizID, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to count attempts: %w", err)
		}
		if count >= int64(*quiz.AttemptsAllowed) {
			return nil, ErrAttemptsExhausted
		}
	}

	return quiz, nil
}

// ===== LIFECYCLE =====

func (s *attemptService) Start(ctx context.Context, quizID uint, studentID string, meta AttemptMeta) (*AttemptResponse, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", quizID, "student_id", studentID)

	quiz, err := s.eligibleQuiz(ctx, quizID, studentID)
	if err != nil {
		return nil, err
	}

	// Snapshot the maximum score now; later question edits do not move the
	// denominator of attempts already underway.
	var maxScore float64
	for _, question := range quiz.Questions {
		maxScore += question.Points
	}

	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now().UTC(),
		MaxScore:  maxScore,
	}
	if meta.IPAddress != "" {
		attempt.IPAddress = &meta.IPAddress
	}
	if meta.UserAgent != "" {
		attempt.UserAgent = &meta.UserAgent
	}

	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.publishAttemptEvent(ctx, events.AttemptStarted, attempt)

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"student_id", studentID,
		"max_score", maxScore)

	response := projectAttempt(attempt)
	response.Questions = buildQuestionPayload(quiz)
	return response, nil
}

func (s *attemptService) RecordAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, studentID string) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.StudentID != studentID {
		return NewPermissionError(studentID, attemptID, "attempt", "record_answer", "not owned by student")
	}

	if attempt.Status != models.AttemptInProgress {
		return ErrAttemptNotActive
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, attempt.QuizID)
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if attemptExpired(attempt, quiz, time.Now()) {
		return ErrAttemptTimeExpired
	}

	question := findQuestion(quiz, req.QuestionID)
	if question == nil {
		return ErrQuestionMismatch
	}
	if !questionHasOption(question, req.SelectedOptionID) {
		return ErrOptionMismatch
	}

	answer := &models.AttemptAnswer{
		AttemptID:        attemptID,
		QuestionID:       req.QuestionID,
		SelectedOptionID: req.SelectedOptionID,
	}
	if err := s.repo.Answer().Upsert(ctx, nil, answer); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}

	s.logger.Debug("Answer recorded",
		"attempt_id", attemptID,
		"question_id", req.QuestionID,
		"option_id", req.SelectedOptionID)
	return nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID uint, studentID string) (*AttemptResponse, error) {
	s.logger.Info("Submitting quiz attempt", "attempt_id", attemptID, "student_id", studentID)

	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.StudentID != studentID {
		return nil, NewPermissionError(studentID, attemptID, "attempt", "submit", "not owned by student")
	}

	if attempt.Status == models.AttemptSubmitted {
		return nil, ErrAttemptAlreadySubmitted
	}

	// Submitting past the time limit stays allowed; the answers that made it
	// in before the deadline still deserve a grade.
	graded, err := s.grading.GradeAttempt(ctx, attemptID, models.AttemptEndReasonSubmitted)
	if err != nil {
		return nil, err
	}

	s.publishAttemptEvent(ctx, events.AttemptSubmitted, graded)
	s.publishAttemptEvent(ctx, events.AttemptGraded, graded)

	s.logger.Info("Quiz attempt submitted",
		"attempt_id", attemptID,
		"student_id", studentID,
		"score", graded.Score,
		"max_score", graded.MaxScore)

	return s.GetByID(ctx, attemptID, studentID, models.RoleStudent)
}

// ===== PROJECTION =====

func (s *attemptService) GetByID(ctx context.Context, attemptID uint, viewerID string, viewerRole models.UserRole) (*AttemptResponse, error) {
	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.StudentID != viewerID && !viewerRole.IsStaff() {
		return nil, NewPermissionError(viewerID, attemptID, "attempt", "view", "not owner or staff")
	}

	return projectAttempt(attempt), nil
}

func (s *attemptService) ListByStudent(ctx context.Context, studentID string, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return projectAttemptList(attempts, total), nil
}

func (s *attemptService) ListByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().GetByQuiz(ctx, nil, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return projectAttemptList(attempts, total), nil
}

func (s *attemptService) TimeRemaining(ctx context.Context, attemptID uint, studentID string) (*TimeRemainingResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.StudentID != studentID {
		return nil, NewPermissionError(studentID, attemptID, "attempt", "view", "not owned by student")
	}

	response := &TimeRemainingResponse{AttemptID: attemptID}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.TimeLimitSec == nil {
		return response, nil
	}

	remaining := 0
	if attempt.Status == models.AttemptInProgress {
		deadline := attempt.StartedAt.Add(time.Duration(*quiz.TimeLimitSec) * time.Second)
		if left := time.Until(deadline); left > 0 {
			remaining = int(left.Seconds())
		}
	}
	response.TimeRemainingSec = &remaining
	return response, nil
}

func (s *attemptService) publishAttemptEvent(ctx context.Context, eventType string, attempt *models.QuizAttempt) {
	data := events.AttemptEventData{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		StudentID: attempt.StudentID,
	}
	if attempt.Status == models.AttemptSubmitted {
		data.Score = attempt.Score
		data.MaxScore = &attempt.MaxScore
		if attempt.EndReason != nil {
			data.EndReason = *attempt.EndReason
		}
	}

	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish attempt event",
			"event_type", eventType,
			"attempt_id", attempt.ID,
			"error", err)
	}
}
