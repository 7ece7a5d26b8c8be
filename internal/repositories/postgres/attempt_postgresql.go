package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempt models.QuizAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempt models.QuizAttempt
	if err := db.WithContext(ctx).
		Preload("Quiz").
		Preload("Answers").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) Update(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Save(attempt).Error
}

func (a *AttemptPostgreSQL) CountByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (int64, error) {
	db := a.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (a *AttemptPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	filters.StudentID = &studentID
	return a.list(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	filters.QuizID = &quizID
	return a.list(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) list(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.QuizAttempt
	var total int64

	query := db.WithContext(ctx).Model(&models.QuizAttempt{})
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "started_at": true, "submitted_at": true, "score": true,
	})

	if err := query.Preload("Quiz").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// MarkSubmitted is the only write that moves an attempt out of in-progress.
// The status predicate makes the transition first-writer-wins under
// concurrent submits.
func (a *AttemptPostgreSQL) MarkSubmitted(ctx context.Context, tx *gorm.DB, id uint, submittedAt time.Time, score float64, endReason string) (bool, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       models.AttemptSubmitted,
			"submitted_at": submittedAt,
			"score":        score,
			"end_reason":   endReason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (a *AttemptPostgreSQL) GetInProgressWithTimeLimit(ctx context.Context, tx *gorm.DB, limit int) ([]*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempts []*models.QuizAttempt
	query := db.WithContext(ctx).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.status = ? AND quizzes.time_limit_sec IS NOT NULL", models.AttemptInProgress).
		Order("quiz_attempts.started_at ASC").
		Preload("Quiz")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetStatsByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (*repositories.AttemptStats, error) {
	db := a.getDB(tx)

	type statusCount struct {
		Status models.AttemptStatus
		Count  int
	}
	var counts []statusCount
	if err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("status, COUNT(*) AS count").
		Where("quiz_id = ?", quizID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	stats := &repositories.AttemptStats{
		StatusBreakdown: make(map[models.AttemptStatus]int),
	}
	for _, c := range counts {
		stats.StatusBreakdown[c.Status] = c.Count
		stats.TotalAttempts += c.Count
	}

	type scoreAgg struct {
		Avg *float64
		Max *float64
	}
	var agg scoreAgg
	if err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("AVG(score) AS avg, MAX(score) AS max").
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptSubmitted).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	if agg.Avg != nil {
		stats.AverageScore = *agg.Avg
	}
	if agg.Max != nil {
		stats.HighestScore = *agg.Max
	}

	return stats, nil
}
