// Package usecase implements the outbox relay that drains pending events to
// the event channel.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/marketplace/internal/contracts"
	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/messaging"
	"github.com/allisson/marketplace/internal/metrics"
	"github.com/allisson/marketplace/internal/outbox/domain"
)

// Config holds outbox relay configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for the outbox relay
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase drains pending outbox rows and publishes each envelope to the
// event channel. A publish failure increments the row's retry count; after
// MaxRetries the row is marked failed and no longer drained. The committed
// business transition behind the event is never rolled back.
type OutboxUseCase struct {
	config          Config
	txManager       database.TxManager
	outboxRepo      OutboxEventRepository
	publisher       messaging.Publisher
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	publisher messaging.Publisher,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:          config,
		txManager:       txManager,
		outboxRepo:      outboxRepo,
		publisher:       publisher,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Start runs the relay loop until the context is cancelled
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox relay",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox relay")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process outbox events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents drains one batch of pending events inside a transaction.
// The SKIP LOCKED select keeps concurrent relay instances off each other's
// batches.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		uc.logger.Info("draining outbox events", slog.Int("count", len(events)))

		for _, event := range events {
			if err := uc.publishEvent(ctx, event); err != nil {
				uc.logger.Error("failed to publish outbox event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Any("error", err),
				)

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			uc.businessMetrics.RecordEvent(ctx, event.EventType, "published")

			// Mark as processed only after the broker acknowledged the publish
			now := time.Now()
			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// publishEvent decodes the stored envelope and hands it to the publisher.
// A payload that no longer parses is a programming error on the write side;
// it will exhaust its retries and end up failed.
func (uc *OutboxUseCase) publishEvent(ctx context.Context, event *domain.OutboxEvent) error {
	envelope, err := contracts.ParseOrderEventEnvelope([]byte(event.Payload))
	if err != nil {
		return err
	}
	return uc.publisher.Publish(ctx, envelope)
}
