package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/cache"
	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var quiz models.Quiz

	err := q.cacheManager.Quiz.CacheOrExecute(ctx, cacheKey, &quiz, cache.QuizTTL, func() (interface{}, error) {
		var dbQuiz models.Quiz
		if err := db.WithContext(ctx).First(&dbQuiz, id).Error; err != nil {
			return nil, err
		}
		return &dbQuiz, nil
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.position ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) ListPublished(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	db := q.getDB(tx)
	var quizzes []*models.Quiz
	var total int64

	query := db.WithContext(ctx).Model(&models.Quiz{}).Where("is_published = ?", true)
	if filters.LectureID != nil {
		query = query.Where("lecture_id = ?", *filters.LectureID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "title": true, "due_at": true,
	})

	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}
	return quizzes, total, nil
}

// answerKeyRow is the scan target for the key query.
type answerKeyRow struct {
	QuestionID      uint
	Points          float64
	CorrectOptionID uint
}

func (q *QuizPostgreSQL) GetAnswerKey(ctx context.Context, tx *gorm.DB, quizID uint) (map[uint]repositories.AnswerKeyEntry, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("key:%d", quizID)
	key := make(map[uint]repositories.AnswerKeyEntry)

	err := q.cacheManager.AnswerKey.CacheOrExecute(ctx, cacheKey, &key, cache.AnswerKeyTTL, func() (interface{}, error) {
		var rows []answerKeyRow
		if err := db.WithContext(ctx).
			Table("questions").
			Select("questions.id AS question_id, questions.points AS points, options.id AS correct_option_id").
			Joins("JOIN options ON options.question_id = questions.id AND options.is_correct = ?", true).
			Where("questions.quiz_id = ?", quizID).
			Order("questions.id ASC, options.position ASC, options.id ASC").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve answer key: %w", err)
		}

		// First row per question wins, so a corrupt multi-correct question
		// still grades against exactly one option.
		resolved := make(map[uint]repositories.AnswerKeyEntry, len(rows))
		for _, row := range rows {
			if _, seen := resolved[row.QuestionID]; seen {
				continue
			}
			resolved[row.QuestionID] = repositories.AnswerKeyEntry{
				QuestionID:      row.QuestionID,
				Points:          row.Points,
				CorrectOptionID: row.CorrectOptionID,
			}
		}
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}
