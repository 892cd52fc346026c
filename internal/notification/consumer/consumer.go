// Package consumer runs the order events consumer loop for the notification worker.
package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/allisson/marketplace/internal/contracts"
	"github.com/allisson/marketplace/internal/metrics"
	"github.com/allisson/marketplace/internal/notification/usecase"
)

// MessageReader is the subset of kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventsConsumer reads order event envelopes from the event channel and
// hands them to the notification use case. Offsets are committed only after a
// message is fully handled, so delivery is at-least-once and duplicates are
// possible after a crash.
type OrderEventsConsumer struct {
	reader              MessageReader
	notificationUseCase usecase.UseCase
	businessMetrics     metrics.BusinessMetrics
	logger              *slog.Logger
}

// NewOrderEventsConsumer creates a new OrderEventsConsumer
func NewOrderEventsConsumer(
	reader MessageReader,
	notificationUseCase usecase.UseCase,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OrderEventsConsumer {
	return &OrderEventsConsumer{
		reader:              reader,
		notificationUseCase: notificationUseCase,
		businessMetrics:     businessMetrics,
		logger:              logger,
	}
}

// Start runs the consume loop until the context is cancelled
func (c *OrderEventsConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting order events consumer")

	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("stopping order events consumer")
				return ctx.Err()
			}
			c.logger.Error("failed to fetch message", slog.Any("error", err))
			continue
		}

		if err := c.handleMessage(ctx, message); err != nil {
			// Leave the offset uncommitted so the message is redelivered.
			c.logger.Error("failed to handle message",
				slog.Int64("offset", message.Offset),
				slog.Any("error", err),
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			c.logger.Error("failed to commit offset",
				slog.Int64("offset", message.Offset),
				slog.Any("error", err),
			)
		}
	}
}

// handleMessage decodes and dispatches one message. A payload that does not
// parse as an envelope is logged and dropped, not retried: redelivery cannot
// fix a malformed message.
func (c *OrderEventsConsumer) handleMessage(ctx context.Context, message kafka.Message) error {
	envelope, err := contracts.ParseOrderEventEnvelope(message.Value)
	if err != nil {
		c.logger.Warn("discarding malformed event envelope",
			slog.Int64("offset", message.Offset),
			slog.Any("error", err),
		)
		return nil
	}

	if err := c.notificationUseCase.HandleOrderEvent(ctx, envelope); err != nil {
		return err
	}

	c.businessMetrics.RecordEvent(ctx, envelope.EventType, "consumed")
	return nil
}

// Close closes the underlying reader
func (c *OrderEventsConsumer) Close() error {
	return c.reader.Close()
}
