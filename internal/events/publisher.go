package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Attempt lifecycle event types consumed by the notification and analytics
// services.
const (
	AttemptStarted   = "quiz.attempt.started"
	AttemptSubmitted = "quiz.attempt.submitted"
	AttemptGraded    = "quiz.attempt.graded"
	AttemptTimedOut  = "quiz.attempt.timed_out"
)

// Event is the envelope every published message uses.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "quiz-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AttemptEventData is the payload for every attempt lifecycle event. Score
// fields are set only on graded events.
type AttemptEventData struct {
	AttemptID uint     `json:"attempt_id"`
	QuizID    uint     `json:"quiz_id"`
	StudentID string   `json:"student_id"`
	Score     *float64 `json:"score,omitempty"`
	MaxScore  *float64 `json:"max_score,omitempty"`
	EndReason string   `json:"end_reason,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// watermillPublisher wraps any watermill publisher behind the Publisher
// interface. The topic is fixed per instance.
type watermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewKafkaPublisher publishes events to Kafka via watermill.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (Publisher, error) {
	pub, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return &watermillPublisher{publisher: pub, topic: topic, logger: logger}, nil
}

// NewGoChannelPublisher is an in-process publisher for development setups
// without Kafka. Messages are dropped when nothing subscribes.
func NewGoChannelPublisher(topic string, logger *slog.Logger) Publisher {
	pub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return &watermillPublisher{publisher: pub, topic: topic, logger: logger}
}

func (p *watermillPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("event published", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	m.logger.Debug("mock event recorded", "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *MockEventPublisher) Close() error { return nil }
