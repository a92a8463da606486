package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types published to the message firehose topic.
const (
	EventMessageCreated       = "message.created"
	EventDirectMessageCreated = "direct_message.created"
)

// EventPublisher writes message-created events to Kafka on the HTTP
// persistence path. The realtime fan-out never goes through here.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &EventPublisher{writer: writer}
}

type messageEvent struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// Publish emits one event keyed by room so per-room ordering survives
// partitioning.
func (p *EventPublisher) Publish(ctx context.Context, eventType, roomKey string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := messageEvent{
		Type:      eventType,
		Payload:   raw,
		Timestamp: time.Now().Unix(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(roomKey),
		Value: value,
	})
	if err != nil {
		slog.Error("Failed to publish event", "type", eventType, "room", roomKey, "error", err)
		return err
	}

	slog.Debug("Published event", "type", eventType, "room", roomKey)
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
