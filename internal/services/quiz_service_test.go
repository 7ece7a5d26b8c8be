package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edustack/quiz-service/internal/repositories"
)

func TestListPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedQuiz(t, quizFixtureOpts{published: true})
	env.seedQuiz(t, quizFixtureOpts{published: false})

	list, err := env.quizzes.ListPublished(ctx, repositories.QuizFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 1 || len(list.Quizzes) != 1 {
		t.Fatalf("expected only the published quiz, got total=%d len=%d", list.Total, len(list.Quizzes))
	}
	if list.Quizzes[0].Questions != nil {
		t.Error("list view must not carry questions")
	}
}

func TestGetForTaking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := env.seedQuiz(t, quizFixtureOpts{published: true})
	draft := env.seedQuiz(t, quizFixtureOpts{published: false})

	view, err := env.quizzes.GetForTaking(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(view.Questions))
	}
	for _, q := range view.Questions {
		if len(q.Options) != 2 {
			t.Errorf("question %d: expected 2 options, got %d", q.ID, len(q.Options))
		}
	}

	if _, err := env.quizzes.GetForTaking(ctx, draft.ID); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("draft quiz must read as missing, got %v", err)
	}
}
