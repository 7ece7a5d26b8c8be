package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustack/quiz-service/internal/services"
	"github.com/edustack/quiz-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GetAttemptStats returns per-quiz attempt statistics.
func (h *ReportHandler) GetAttemptStats(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	stats, err := h.reportService.GetAttemptStats(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportAttempts streams the quiz's attempts as an xlsx download.
func (h *ReportHandler) ExportAttempts(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz attempts", "quiz_id", quizID)

	data, filename, err := h.reportService.ExportAttempts(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
