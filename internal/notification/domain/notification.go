// Package domain defines the notification domain entities and types.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/errors"
)

// Notification types produced by the order event worker.
const (
	TypeOrderPlaced    = "order_placed"
	TypeOrderConfirmed = "order_confirmed"
	TypeOrderShipped   = "order_shipped"
	TypeOrderCompleted = "order_completed"
)

// Notification is a message delivered to a user about an order event.
// Delivery is at-least-once, so duplicate rows for the same event can exist.
type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	OrderID     uuid.NullUUID
	Type        string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// ErrNotificationNotFound indicates the requested notification does not exist.
var ErrNotificationNotFound = errors.Wrap(errors.ErrNotFound, "notification not found")
