package services

import (
	"context"
	"testing"

	"github.com/edustack/quiz-service/internal/models"
)

func TestResolveAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})
	q1, q2 := quiz.Questions[0], quiz.Questions[1]

	key, err := env.grading.ResolveAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(key) != 2 {
		t.Fatalf("expected 2 key entries, got %d", len(key))
	}
	if entry := key[q1.ID]; entry.Points != 2 || entry.CorrectOptionID != q1.Options[0].ID {
		t.Errorf("q1 key wrong: %+v", entry)
	}
	if entry := key[q2.ID]; entry.Points != 3 || entry.CorrectOptionID != q2.Options[1].ID {
		t.Errorf("q2 key wrong: %+v", entry)
	}
}

func TestResolveAnswerKey_NoCorrectOption(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})
	q1 := quiz.Questions[0]

	// Strip the correct flag from q1; it must drop out of the key entirely.
	if err := env.db.Model(&models.Option{}).
		Where("question_id = ?", q1.ID).
		Update("is_correct", false).Error; err != nil {
		t.Fatalf("failed to clear correct flag: %v", err)
	}

	key, err := env.grading.ResolveAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, found := key[q1.ID]; found {
		t.Error("question without a correct option must be absent from the key")
	}

	// A correct selection on q1 now scores nothing.
	attempt, _ := env.attempts.Start(ctx, quiz.ID, studentAlice, AttemptMeta{})
	mustRecord(t, env, attempt.ID, q1.ID, q1.Options[0].ID)

	result, err := env.attempts.Submit(ctx, attempt.ID, studentAlice)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if *result.Score != 0 {
		t.Errorf("expected score 0, got %v", *result.Score)
	}
	if v := result.Answers[0]; v.IsCorrect == nil || *v.IsCorrect {
		t.Errorf("answer on keyless question must grade incorrect: %+v", v)
	}
}

func TestResolveAnswerKey_MultiCorrectTakesLowestPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})
	q1 := quiz.Questions[0]

	// Corrupt the data: both options flagged correct.
	if err := env.db.Model(&models.Option{}).
		Where("question_id = ?", q1.ID).
		Update("is_correct", true).Error; err != nil {
		t.Fatalf("failed to corrupt options: %v", err)
	}

	key, err := env.grading.ResolveAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if entry := key[q1.ID]; entry.CorrectOptionID != q1.Options[0].ID {
		t.Errorf("expected lowest-position option %d, got %d", q1.Options[0].ID, entry.CorrectOptionID)
	}

	// The second flagged option does not count.
	attempt, _ := env.attempts.Start(ctx, quiz.ID, studentAlice, AttemptMeta{})
	mustRecord(t, env, attempt.ID, q1.ID, q1.Options[1].ID)
	result, err := env.attempts.Submit(ctx, attempt.ID, studentAlice)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if *result.Score != 0 {
		t.Errorf("expected score 0 against the lowest-position key, got %v", *result.Score)
	}
}

func TestGradeAttempt_KeyResolvedAtSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})

	attempt, _ := env.attempts.Start(ctx, quiz.ID, studentAlice, AttemptMeta{})
	if attempt.MaxScore != 5 {
		t.Fatalf("expected snapshot 5, got %v", attempt.MaxScore)
	}

	// A question added mid-flight can still earn points; the snapshot
	// denominator stays put.
	q3 := &models.Question{QuizID: quiz.ID, Type: models.SingleChoice, Prompt: "Late addition", Points: 4, Position: 3}
	if err := env.db.Create(q3).Error; err != nil {
		t.Fatalf("failed to add question: %v", err)
	}
	o := &models.Option{QuestionID: q3.ID, Content: "Yes", IsCorrect: true, Position: 1}
	if err := env.db.Create(o).Error; err != nil {
		t.Fatalf("failed to add option: %v", err)
	}

	mustRecord(t, env, attempt.ID, q3.ID, o.ID)

	result, err := env.attempts.Submit(ctx, attempt.ID, studentAlice)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if *result.Score != 4 {
		t.Errorf("expected score 4 from the live key, got %v", *result.Score)
	}
	if result.MaxScore != 5 {
		t.Errorf("snapshot must not move, got %v", result.MaxScore)
	}
}
