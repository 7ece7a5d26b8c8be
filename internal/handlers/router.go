package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edustack/quiz-service/internal/config"
	"github.com/edustack/quiz-service/internal/models"
	"github.com/edustack/quiz-service/internal/services"
	"github.com/edustack/quiz-service/internal/utils"
	"github.com/edustack/quiz-service/internal/validator"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	attemptHandler *AttemptHandler
	reportHandler  *ReportHandler
	authMiddleware *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	jwtConfig config.JWTConfig,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(serviceManager.Quiz(), serviceManager.Attempt(), logger),
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		reportHandler:  NewReportHandler(serviceManager.Report(), logger),
		authMiddleware: NewJWTAuthMiddleware(jwtConfig),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:quiz_id", hm.quizHandler.GetQuiz)

			quizzes.POST("/:quiz_id/attempts", hm.attemptHandler.StartAttempt)

			// Staff read side
			quizzes.GET("/:quiz_id/attempts", staffOnly, hm.quizHandler.ListQuizAttempts)
			quizzes.GET("/:quiz_id/attempts/stats", staffOnly, hm.reportHandler.GetAttemptStats)
			quizzes.GET("/:quiz_id/attempts/export", staffOnly, hm.reportHandler.ExportAttempts)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/answer", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/time-remaining", hm.attemptHandler.GetTimeRemaining)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})
}
