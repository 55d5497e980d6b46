package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order events. Publishing is best-effort: callers log
// failures but never roll back committed orders over them.
type Publisher interface {
	// Publish sends one event keyed by the order number.
	Publish(ctx context.Context, key string, event any) error

	// Close releases the underlying writer.
	Close() error
}

// kafkaPublisher implements Publisher on a Kafka topic.
type kafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &kafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "event-publisher").Logger(),
	}
}

// Publish sends one event keyed by the order number.
func (p *kafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to publish event")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	p.logger.Debug().Str("key", key).Msg("event published")
	return nil
}

// Close releases the underlying writer.
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// nopPublisher discards all events; used when the event stream is disabled.
type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards events.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(ctx context.Context, key string, event any) error { return nil }
func (nopPublisher) Close() error                                             { return nil }
