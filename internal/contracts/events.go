// Package contracts defines the versioned event envelope shared by the order
// engine (producer) and the notification worker (consumer).
package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EnvelopeVersion is the contract version stamped on every published event.
const EnvelopeVersion = "1.0.0"

// Order event types carried in the envelope.
const (
	EventOrderPlaced    = "order_placed"
	EventOrderConfirmed = "order_confirmed"
	EventOrderShipped   = "order_shipped"
	EventOrderCompleted = "order_completed"
)

// OrderEventPayload carries the event-specific data.
// ProductID is only present on order_placed, TrackingID only on order_shipped.
type OrderEventPayload struct {
	BuyerID    string `json:"buyerId"`
	SellerID   string `json:"sellerId"`
	ProductID  string `json:"productId,omitempty"`
	TrackingID string `json:"trackingId,omitempty"`
}

// OrderEventEnvelope is the wire format for order lifecycle events.
type OrderEventEnvelope struct {
	EventType  string            `json:"eventType"`
	OrderID    string            `json:"orderId"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    OrderEventPayload `json:"payload"`
	Version    string            `json:"version"`
}

// NewOrderEventEnvelope builds an envelope for the given event type.
func NewOrderEventEnvelope(eventType, orderID string, occurredAt time.Time, payload OrderEventPayload) OrderEventEnvelope {
	return OrderEventEnvelope{
		EventType:  eventType,
		OrderID:    orderID,
		OccurredAt: occurredAt.UTC(),
		Payload:    payload,
		Version:    EnvelopeVersion,
	}
}

// Marshal serializes the envelope to JSON.
func (e OrderEventEnvelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseOrderEventEnvelope decodes an envelope from raw bytes.
//
// Consumers tolerate newer minor and patch versions of the contract: unknown
// fields are ignored by the decoder and only a major version bump is rejected.
func ParseOrderEventEnvelope(data []byte) (OrderEventEnvelope, error) {
	var envelope OrderEventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return OrderEventEnvelope{}, fmt.Errorf("decode event envelope: %w", err)
	}

	if envelope.EventType == "" {
		return OrderEventEnvelope{}, fmt.Errorf("event envelope missing eventType")
	}
	if envelope.OrderID == "" {
		return OrderEventEnvelope{}, fmt.Errorf("event envelope missing orderId")
	}

	if err := checkVersion(envelope.Version); err != nil {
		return OrderEventEnvelope{}, err
	}

	return envelope, nil
}

// checkVersion accepts any version with the same major component as
// EnvelopeVersion. An empty version is treated as the current contract.
func checkVersion(version string) error {
	if version == "" {
		return nil
	}

	major, _, _ := strings.Cut(version, ".")
	currentMajor, _, _ := strings.Cut(EnvelopeVersion, ".")
	if major != currentMajor {
		return fmt.Errorf("unsupported event envelope version %q", version)
	}
	return nil
}
