// Package domain defines the order domain entities and the lifecycle state machine.
package domain

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/errors"
)

// Status is the lifecycle state of an order.
type Status string

// Order lifecycle states. PENDING is the only initial state, COMPLETED is
// terminal.
const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
)

// transitions is the only legal path through the state machine:
// PENDING -> CONFIRMED -> SHIPPED -> COMPLETED.
var transitions = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusShipped,
	StatusShipped:   StatusCompleted,
}

// CanTransitionTo reports whether the state machine allows moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	return transitions[s] == target
}

// Role selects which side of an order a listing filters on.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseRole normalizes a role string case-insensitively.
// Anything other than "buyer" is treated as seller.
func ParseRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleBuyer)) {
		return RoleBuyer
	}
	return RoleSeller
}

// Order represents one purchase transaction between a buyer and a seller.
type Order struct {
	ID         uuid.UUID
	BuyerID    uuid.UUID
	SellerID   uuid.UUID
	ProductID  uuid.UUID
	Status     Status
	TrackingID sql.NullString
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Timeline holds the order's audit trail ordered by createdAt ascending.
	// Populated on hydration, not by every repository read.
	Timeline []*TimelineEntry
}

// TimelineEntry is one immutable audit record of a status transition.
type TimelineEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    Status
	Detail    json.RawMessage
	CreatedAt time.Time
}

// NewTimelineDetail builds the standard detail annotation for a transition.
func NewTimelineDetail(message string) json.RawMessage {
	detail, _ := json.Marshal(map[string]string{"message": message})
	return detail
}

// NewShippedTimelineDetail builds the detail annotation for a shipment,
// carrying the tracking id.
func NewShippedTimelineDetail(trackingID string) json.RawMessage {
	detail, _ := json.Marshal(map[string]string{"trackingId": trackingID})
	return detail
}

// Domain-specific errors for order operations.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrSelfPurchase indicates a buyer tried to order their own product.
	ErrSelfPurchase = errors.Wrap(errors.ErrInvalidInput, "cannot order your own product")

	// ErrNotSeller indicates the caller is not the order's seller.
	ErrNotSeller = errors.Wrap(errors.ErrForbidden, "only the seller can perform this transition")

	// ErrNotBuyer indicates the caller is not the order's buyer.
	ErrNotBuyer = errors.Wrap(errors.ErrForbidden, "only the buyer can perform this transition")

	// ErrTrackingIDRequired indicates shipment was attempted without a tracking id.
	ErrTrackingIDRequired = errors.Wrap(errors.ErrInvalidInput, "tracking id is required")
)

// InvalidTransitionError reports an attempted transition that is not legal
// from the order's current status.
func InvalidTransitionError(from, to Status) error {
	return errors.Wrap(errors.ErrInvalidState,
		"cannot transition order from "+string(from)+" to "+string(to))
}
