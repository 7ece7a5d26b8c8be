package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/repositories"
	"github.com/edustack/quiz-service/internal/services"
	"github.com/edustack/quiz-service/internal/utils"
	"github.com/edustack/quiz-service/internal/validator"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	validator      *validator.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		validator:      validator,
	}
}

// StartAttempt starts a new attempt on a quiz
// @Summary Start quiz attempt
// @Tags attempts
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Success 201 {object} services.AttemptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Starting quiz attempt", "quiz_id", quizID)

	meta := services.AttemptMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), quizID, GetUserID(c), meta)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// SubmitAnswer records one answer on an in-progress attempt
// @Summary Record answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param answer body services.SubmitAnswerRequest true "Selected option"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /attempts/{id}/answer [post]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.attemptService.RecordAnswer(c.Request.Context(), attemptID, &req, GetUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitAttempt grades and finalizes an attempt
// @Summary Submit quiz attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	h.LogRequest(c, "Submitting quiz attempt", "attempt_id", attemptID)

	attempt, err := h.attemptService.Submit(c.Request.Context(), attemptID, GetUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetAttempt returns one attempt, redacted while in progress
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	attempt, err := h.attemptService.GetByID(c.Request.Context(), attemptID, GetUserID(c), GetUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ListAttempts lists the caller's own attempts
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	filters := parseAttemptFilters(c)

	attempts, err := h.attemptService.ListByStudent(c.Request.Context(), GetUserID(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

// GetTimeRemaining reports the seconds left on a timed attempt
func (h *AttemptHandler) GetTimeRemaining(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	remaining, err := h.attemptService.TimeRemaining(c.Request.Context(), attemptID, GetUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, remaining)
}

func parseAttemptFilters(c *gin.Context) repositories.AttemptFilters {
	var filters repositories.AttemptFilters

	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := models.AttemptStatus(statusStr)
		filters.Status = &status
	}
	if quizIDStr := c.Query("quiz_id"); quizIDStr != "" {
		if quizID, err := strconv.ParseUint(quizIDStr, 10, 32); err == nil {
			id := uint(quizID)
			filters.QuizID = &id
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}
	filters.SortBy = c.Query("sort_by")
	filters.SortOrder = c.Query("sort_order")

	return filters
}
