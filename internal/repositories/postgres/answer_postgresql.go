package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Upsert keeps re-answering idempotent: the second selection for the same
// question replaces the first instead of adding a row.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.AttemptAnswer) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"selected_option_id": answer.SelectedOptionID,
				"updated_at":         time.Now().UTC(),
			}),
		}).
		Create(answer).Error
}

func (a *AnswerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.AttemptAnswer) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Save(answer).Error
}

func (a *AnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.AttemptAnswer, error) {
	db := a.getDB(tx)
	var answers []*models.AttemptAnswer
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
