package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Handlers map each to an HTTP
// status in handleServiceError.
var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")

	ErrQuizPastDue             = errors.New("quiz is past its due date")
	ErrAttemptsExhausted       = errors.New("no attempts remaining for this quiz")
	ErrAttemptNotActive        = errors.New("attempt is not in progress")
	ErrAttemptAlreadySubmitted = errors.New("attempt has already been submitted")
	ErrAttemptTimeExpired      = errors.New("attempt time limit has expired")

	ErrQuestionMismatch = errors.New("question does not belong to the attempt's quiz")
	ErrOptionMismatch   = errors.New("option does not belong to the question")
)

// PermissionError carries who tried what on which resource.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is an authorization failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
