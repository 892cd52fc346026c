package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/metrics"
	"github.com/allisson/marketplace/internal/order/domain"
)

// orderUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// PlaceOrder records metrics for order placement.
func (o *orderUseCaseWithMetrics) PlaceOrder(
	ctx context.Context,
	buyerID, productID uuid.UUID,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.PlaceOrder(ctx, buyerID, productID)
	o.record(ctx, "order_place", start, err)
	return order, err
}

// ConfirmOrder records metrics for order confirmation.
func (o *orderUseCaseWithMetrics) ConfirmOrder(
	ctx context.Context,
	callerID, orderID uuid.UUID,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.ConfirmOrder(ctx, callerID, orderID)
	o.record(ctx, "order_confirm", start, err)
	return order, err
}

// ShipOrder records metrics for order shipment.
func (o *orderUseCaseWithMetrics) ShipOrder(
	ctx context.Context,
	callerID, orderID uuid.UUID,
	trackingID string,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.ShipOrder(ctx, callerID, orderID, trackingID)
	o.record(ctx, "order_ship", start, err)
	return order, err
}

// CompleteOrder records metrics for order completion.
func (o *orderUseCaseWithMetrics) CompleteOrder(
	ctx context.Context,
	callerID, orderID uuid.UUID,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.CompleteOrder(ctx, callerID, orderID)
	o.record(ctx, "order_complete", start, err)
	return order, err
}

// GetOrderByID records metrics for order retrieval.
func (o *orderUseCaseWithMetrics) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.GetOrderByID(ctx, orderID)
	o.record(ctx, "order_get", start, err)
	return order, err
}

// ListOrdersForUser records metrics for order listing.
func (o *orderUseCaseWithMetrics) ListOrdersForUser(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
	offset, limit int,
) (*ListOrdersOutput, error) {
	start := time.Now()
	output, err := o.next.ListOrdersForUser(ctx, userID, role, offset, limit)
	o.record(ctx, "order_list", start, err)
	return output, err
}

func (o *orderUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "orders", operation, status)
	o.metrics.RecordDuration(ctx, "orders", operation, time.Since(start), status)
}
