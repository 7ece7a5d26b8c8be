package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edustack/quiz-service/internal/services"
	"github.com/edustack/quiz-service/internal/utils"
	"github.com/edustack/quiz-service/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// parseIDParam returns the numeric path parameter, or 0 after writing a 400.
func (h BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
func (h BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Quiz not found",
		})
	case errors.Is(err, services.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Attempt not found",
		})
	case errors.Is(err, services.ErrQuizPastDue):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Quiz is past its due date",
		})
	case errors.Is(err, services.ErrAttemptsExhausted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "No attempts remaining for this quiz",
		})
	case errors.Is(err, services.ErrAttemptNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Attempt is not in progress",
		})
	case errors.Is(err, services.ErrAttemptAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Attempt already submitted",
		})
	case errors.Is(err, services.ErrAttemptTimeExpired):
		c.JSON(http.StatusGone, ErrorResponse{
			Message: "Attempt time has expired",
		})
	case errors.Is(err, services.ErrQuestionMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Question does not belong to this quiz",
		})
	case errors.Is(err, services.ErrOptionMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Option does not belong to this question",
		})
	default:
		utils.FromContext(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
