package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/edustack/quiz-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, db: db, logger: logger}
}

func (s *reportService) GetAttemptStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	stats, err := s.repo.Attempt().GetStatsByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute attempt stats: %w", err)
	}
	return stats, nil
}

var exportHeader = []string{"Attempt ID", "Student ID", "Status", "Score", "Max Score", "Started At", "Submitted At", "End Reason"}

// ExportAttempts renders every attempt of the quiz into an xlsx workbook and
// returns the bytes plus a suggested filename.
func (s *reportService) ExportAttempts(ctx context.Context, quizID uint) ([]byte, string, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrQuizNotFound
		}
		return nil, "", fmt.Errorf("failed to get quiz: %w", err)
	}

	// Export everything; pagination defaults would silently truncate.
	attempts, _, err := s.repo.Attempt().GetByQuiz(ctx, nil, quizID, repositories.AttemptFilters{
		Limit:  1 << 20,
		SortBy: "started_at", SortOrder: "asc",
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to load attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attempts"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, attempt := range attempts {
		row := i + 2
		values := []interface{}{
			attempt.ID,
			attempt.StudentID,
			string(attempt.Status),
			formatScore(attempt.Score),
			attempt.MaxScore,
			attempt.StartedAt.Format(time.RFC3339),
			formatTime(attempt.SubmittedAt),
			formatEndReason(attempt.EndReason),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("quiz_%d_attempts_%s.xlsx", quiz.ID, time.Now().UTC().Format("20060102_150405"))
	s.logger.Info("Attempts exported", "quiz_id", quizID, "rows", len(attempts), "filename", filename)
	return buf.Bytes(), filename, nil
}

func formatScore(score *float64) interface{} {
	if score == nil {
		return ""
	}
	return *score
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatEndReason(reason *string) string {
	if reason == nil {
		return ""
	}
	return *reason
}
