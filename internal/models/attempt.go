package models

import (
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

const (
	AttemptEndReasonSubmitted = "submitted"
	AttemptEndReasonTimeout   = "time_out"
)

// QuizAttempt is one student's run through a quiz. MaxScore is snapshotted at
// start time and never recomputed; Score stays nil until the grading
// transaction commits.
type QuizAttempt struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	QuizID    uint          `json:"quiz_id" gorm:"not null;index:idx_quiz_student"`
	StudentID string        `json:"student_id" gorm:"not null;index:idx_quiz_student;size:255"`
	Status    AttemptStatus `json:"status" gorm:"default:in_progress;index"`

	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`

	MaxScore float64  `json:"max_score"`
	Score    *float64 `json:"score,omitempty"`

	// Audit metadata; never consulted by grading.
	IPAddress *string `json:"ip_address,omitempty" gorm:"size:45"`
	UserAgent *string `json:"user_agent,omitempty" gorm:"type:text"`
	EndReason *string `json:"end_reason,omitempty" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    Quiz            `json:"-" gorm:"foreignKey:QuizID"`
	Answers []AttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

// AttemptAnswer is unique per (attempt, question): re-answering replaces the
// selection. Grading fields stay nil until the owning attempt is submitted.
type AttemptAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`

	SelectedOptionID uint     `json:"selected_option_id" gorm:"not null"`
	IsCorrect        *bool    `json:"is_correct,omitempty"`
	PointsAwarded    *float64 `json:"points_awarded,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Attempt  QuizAttempt `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question    `json:"-" gorm:"foreignKey:QuestionID"`
}
