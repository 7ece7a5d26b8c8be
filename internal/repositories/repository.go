package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates every sub-repository behind one handle.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
