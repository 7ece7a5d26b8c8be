package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(AttemptStarted, AttemptEventData{AttemptID: 1, QuizID: 2, StudentID: "s-1"})

	if event.ID == "" {
		t.Error("event ID must not be empty")
	}
	if event.Type != AttemptStarted {
		t.Errorf("expected type %s, got %s", AttemptStarted, event.Type)
	}
	if event.Source != "quiz-service" {
		t.Errorf("unexpected source %s", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("unexpected version %s", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp must be set")
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	for _, eventType := range []string{AttemptStarted, AttemptSubmitted} {
		if err := publisher.Publish(ctx, NewEvent(eventType, nil)); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(published))
	}
	if published[0].Type != AttemptStarted || published[1].Type != AttemptSubmitted {
		t.Errorf("unexpected order: %s, %s", published[0].Type, published[1].Type)
	}

	publisher.ClearEvents()
	if remaining := publisher.GetPublishedEvents(); len(remaining) != 0 {
		t.Errorf("expected no events after clear, got %d", len(remaining))
	}
}

func TestGoChannelPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewGoChannelPublisher("test.topic", logger)
	defer publisher.Close()

	event := NewEvent(AttemptGraded, AttemptEventData{AttemptID: 7, QuizID: 1, StudentID: "s-7"})
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}
