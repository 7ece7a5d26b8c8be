package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/edustack/quiz-service/internal/models"
)

func TestGetAttemptStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})
	q1 := quiz.Questions[0]

	// One graded attempt (score 2) and one still open.
	first, _ := env.attempts.Start(ctx, quiz.ID, studentAlice, AttemptMeta{})
	mustRecord(t, env, first.ID, q1.ID, q1.Options[0].ID)
	if _, err := env.attempts.Submit(ctx, first.ID, studentAlice); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := env.attempts.Start(ctx, quiz.ID, studentBob, AttemptMeta{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	stats, err := env.reports.GetAttemptStats(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	if stats.TotalAttempts != 2 {
		t.Errorf("expected 2 attempts, got %d", stats.TotalAttempts)
	}
	if stats.StatusBreakdown[models.AttemptSubmitted] != 1 || stats.StatusBreakdown[models.AttemptInProgress] != 1 {
		t.Errorf("unexpected breakdown: %v", stats.StatusBreakdown)
	}
	if stats.AverageScore != 2 || stats.HighestScore != 2 {
		t.Errorf("unexpected score aggregates: avg=%v max=%v", stats.AverageScore, stats.HighestScore)
	}

	if _, err := env.reports.GetAttemptStats(ctx, 9999); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("expected ErrQuizNotFound for missing quiz, got %v", err)
	}
}

func TestExportAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})
	q1 := quiz.Questions[0]

	attempt, _ := env.attempts.Start(ctx, quiz.ID, studentAlice, AttemptMeta{})
	mustRecord(t, env, attempt.ID, q1.ID, q1.Options[0].ID)
	if _, err := env.attempts.Submit(ctx, attempt.ID, studentAlice); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	data, filename, err := env.reports.ExportAttempts(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Attempts")
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[0][0] != "Attempt ID" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != studentAlice {
		t.Errorf("expected student %s in row, got %v", studentAlice, rows[1])
	}
	if rows[1][2] != string(models.AttemptSubmitted) {
		t.Errorf("expected submitted status, got %v", rows[1][2])
	}
}
