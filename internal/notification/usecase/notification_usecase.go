// Package usecase implements notification creation from order events.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/contracts"
	"github.com/allisson/marketplace/internal/notification/domain"
)

// ListNotificationsOutput holds one page of a user's notifications with the total count
type ListNotificationsOutput struct {
	Notifications []*domain.Notification
	Total         int
}

// UseCase defines the interface for notification business logic
type UseCase interface {
	HandleOrderEvent(ctx context.Context, envelope contracts.OrderEventEnvelope) error
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, offset, limit int) (*ListNotificationsOutput, error)
}

// NotificationRepository defines notification repository operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, offset, limit int) ([]*domain.Notification, error)
	CountByRecipient(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// NotificationUseCase turns order event envelopes into notification rows.
// Each event type has a fixed recipient side: the seller hears about placed
// and completed orders, the buyer about confirmed and shipped ones.
type NotificationUseCase struct {
	notificationRepo NotificationRepository
	logger           *slog.Logger
}

// NewNotificationUseCase creates a new NotificationUseCase
func NewNotificationUseCase(notificationRepo NotificationRepository, logger *slog.Logger) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// HandleOrderEvent routes one envelope to its recipient and persists the
// notification. An unknown event type is logged and dropped so newer
// producers never wedge the consumer group.
func (uc *NotificationUseCase) HandleOrderEvent(ctx context.Context, envelope contracts.OrderEventEnvelope) error {
	var recipient string
	var payload map[string]string

	switch envelope.EventType {
	case contracts.EventOrderPlaced:
		recipient = envelope.Payload.SellerID
		payload = map[string]string{
			"buyerId":   envelope.Payload.BuyerID,
			"productId": envelope.Payload.ProductID,
		}
	case contracts.EventOrderConfirmed:
		recipient = envelope.Payload.BuyerID
		payload = map[string]string{"sellerId": envelope.Payload.SellerID}
	case contracts.EventOrderShipped:
		recipient = envelope.Payload.BuyerID
		payload = map[string]string{"trackingId": envelope.Payload.TrackingID}
	case contracts.EventOrderCompleted:
		recipient = envelope.Payload.SellerID
		payload = map[string]string{"buyerId": envelope.Payload.BuyerID}
	default:
		uc.logger.Warn("skipping unknown order event type",
			slog.String("event_type", envelope.EventType),
			slog.String("order_id", envelope.OrderID),
		)
		return nil
	}

	recipientID, err := uuid.Parse(recipient)
	if err != nil {
		// Retrying cannot fix a bad recipient id, drop the event instead of
		// blocking the partition on it.
		uc.logger.Warn("skipping order event with invalid recipient id",
			slog.String("event_type", envelope.EventType),
			slog.String("order_id", envelope.OrderID),
			slog.Any("error", err),
		)
		return nil
	}

	notification := &domain.Notification{
		ID:          uuid.Must(uuid.NewV7()),
		RecipientID: recipientID,
		Type:        envelope.EventType,
		Payload:     mustMarshal(payload),
	}
	if orderID, err := uuid.Parse(envelope.OrderID); err == nil {
		notification.OrderID = uuid.NullUUID{UUID: orderID, Valid: true}
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	uc.logger.Info("notification created",
		slog.String("notification_id", notification.ID.String()),
		slog.String("recipient_id", recipientID.String()),
		slog.String("type", envelope.EventType),
	)
	return nil
}

// ListForRecipient returns one page of the user's notifications, newest first
func (uc *NotificationUseCase) ListForRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	offset, limit int,
) (*ListNotificationsOutput, error) {
	notifications, err := uc.notificationRepo.ListByRecipient(ctx, recipientID, offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := uc.notificationRepo.CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	return &ListNotificationsOutput{Notifications: notifications, Total: total}, nil
}

func mustMarshal(value map[string]string) json.RawMessage {
	data, _ := json.Marshal(value)
	return data
}
