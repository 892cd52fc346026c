package messaging

import (
	"github.com/segmentio/kafka-go"

	"github.com/allisson/marketplace/internal/config"
)

// NewOrderEventsReader creates a consumer-group reader for the order events
// topic. Offsets are committed explicitly by the consumer after each message
// is handled, giving at-least-once delivery.
func NewOrderEventsReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.KafkaBrokerList(),
		Topic:       cfg.KafkaOrderEventsTopic,
		GroupID:     cfg.KafkaConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
}
