package models

import (
	"time"
)

type GradingPolicy string

const (
	GradingHighest GradingPolicy = "highest"
	GradingLatest  GradingPolicy = "latest"
	GradingAverage GradingPolicy = "average"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
)

// Quiz is owned by the content authoring service; this service only reads it.
type Quiz struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	LectureID uint   `json:"lecture_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null;size:200"`

	TimeLimitSec     *int          `json:"time_limit_sec"`                  // nil = untimed
	AttemptsAllowed  *int          `json:"attempts_allowed"`                // nil = unlimited
	DueAt            *time.Time    `json:"due_at"`                          // nil = no deadline
	IsPublished      bool          `json:"is_published" gorm:"index"`
	ShuffleQuestions bool          `json:"shuffle_questions"`
	GradingPolicy    GradingPolicy `json:"grading_policy" gorm:"default:highest"` // cross-attempt aggregation hint, not enforced per attempt

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	QuizID   uint         `json:"quiz_id" gorm:"not null;index"`
	Type     QuestionType `json:"type" gorm:"not null;default:single_choice"`
	Prompt   string       `json:"prompt" gorm:"type:text;not null"`
	Points   float64      `json:"points" gorm:"not null"`
	Position int          `json:"position" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Content    string `json:"content" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct,omitempty"`
	Position   int    `json:"position" gorm:"not null"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
