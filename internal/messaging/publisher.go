// Package messaging provides the Kafka transport for order domain events.
package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/allisson/marketplace/internal/config"
	"github.com/allisson/marketplace/internal/contracts"
)

// Publisher sends order event envelopes to the event channel.
type Publisher interface {
	Publish(ctx context.Context, envelope contracts.OrderEventEnvelope) error
	Close() error
}

// KafkaPublisher publishes envelopes to a Kafka topic, keyed by order id so
// events for the same order land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the configured order events topic.
func NewKafkaPublisher(cfg *config.Config, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokerList()...),
		Topic:        cfg.KafkaOrderEventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish sends a single envelope. Delivery is at-least-once: the caller
// (the outbox relay) retries on error.
func (p *KafkaPublisher) Publish(ctx context.Context, envelope contracts.OrderEventEnvelope) error {
	value, err := envelope.Marshal()
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(envelope.OrderID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return err
	}

	p.logger.Debug("event published",
		slog.String("event_type", envelope.EventType),
		slog.String("order_id", envelope.OrderID),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards events. Used when Kafka is not configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ contracts.OrderEventEnvelope) error { return nil }

func (NoopPublisher) Close() error { return nil }
