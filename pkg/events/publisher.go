package events

import (
	"context"
	"encoding/json"
	"fmt"

	"atelier/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

// Publisher emits domain events. Publishing is best-effort at the call sites:
// a failed publish is logged, never surfaced to the API caller.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	source string
	log    *logger.Logger
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(brokers []string, topic, source string, log *logger.Logger) Publisher {
	if len(brokers) == 0 {
		log.Info("Event publishing disabled, no Kafka brokers configured")
		return &nopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Hash by key for per-key ordering
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf(msg, args...))
		}),
	}

	log.Info("Event publisher initialized", "topic", topic, "brokers", brokers)
	return &kafkaPublisher{
		writer: writer,
		source: source,
		log:    log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key, eventType string, payload any) error {
	event := newEvent(p.source, eventType, payload)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.ID)},
			{Key: HeaderEventType, Value: []byte(event.Type)},
			{Key: HeaderSource, Value: []byte(event.Source)},
			{Key: HeaderTimestamp, Value: []byte(event.OccurredAt)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.log.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "key", key)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type nopPublisher struct{}

func (*nopPublisher) Publish(ctx context.Context, key, eventType string, payload any) error {
	return nil
}

func (*nopPublisher) Close() error { return nil }
