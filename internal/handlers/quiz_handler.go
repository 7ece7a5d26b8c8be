package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edustack/quiz-service/internal/repositories"
	"github.com/edustack/quiz-service/internal/services"
	"github.com/edustack/quiz-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService    services.QuizService
	attemptService services.AttemptService
}

func NewQuizHandler(quizService services.QuizService, attemptService services.AttemptService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:    NewBaseHandler(logger),
		quizService:    quizService,
		attemptService: attemptService,
	}
}

// ListQuizzes lists published quizzes.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	var filters repositories.QuizFilters
	if lectureIDStr := c.Query("lecture_id"); lectureIDStr != "" {
		if lectureID, err := strconv.ParseUint(lectureIDStr, 10, 32); err == nil {
			id := uint(lectureID)
			filters.LectureID = &id
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

	quizzes, err := h.quizService.ListPublished(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// GetQuiz returns a published quiz with questions and options, correctness
// withheld.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	quiz, err := h.quizService.GetForTaking(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ListQuizAttempts lists every attempt on a quiz. Staff only; the router
// guards the role.
func (h *QuizHandler) ListQuizAttempts(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	attempts, err := h.attemptService.ListByQuiz(c.Request.Context(), quizID, parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}
