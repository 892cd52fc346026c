// Package usecase implements the order lifecycle engine.
package usecase

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/contracts"
	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/order/domain"

	outboxDomain "github.com/allisson/marketplace/internal/outbox/domain"
	productDomain "github.com/allisson/marketplace/internal/product/domain"
)

// ListOrdersOutput holds one page of a user's orders with the total count
type ListOrdersOutput struct {
	Orders []*domain.Order
	Total  int
}

// UseCase defines the interface for order business logic
type UseCase interface {
	PlaceOrder(ctx context.Context, buyerID, productID uuid.UUID) (*domain.Order, error)
	ConfirmOrder(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error)
	ShipOrder(ctx context.Context, callerID, orderID uuid.UUID, trackingID string) (*domain.Order, error)
	CompleteOrder(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID, role domain.Role, offset, limit int) (*ListOrdersOutput, error)
}

// OrderRepository defines order repository operations
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) error
	CreateTimelineEntry(ctx context.Context, entry *domain.TimelineEntry) error
	ListTimeline(ctx context.Context, orderID uuid.UUID) ([]*domain.TimelineEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID, role domain.Role, offset, limit int) ([]*domain.Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID, role domain.Role) (int, error)
}

// ProductRepository defines the product lookups the order engine needs
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error)
}

// OutboxEventRepository defines the outbox writes the order engine needs
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// OrderUseCase drives the order state machine. Every transition persists the
// status change, its timeline entry and the outbox event in one transaction,
// so an event is published if and only if the transition committed.
type OrderUseCase struct {
	txManager   database.TxManager
	orderRepo   OrderRepository
	productRepo ProductRepository
	outboxRepo  OutboxEventRepository
	logger      *slog.Logger
}

// NewOrderUseCase creates a new OrderUseCase
func NewOrderUseCase(
	txManager database.TxManager,
	orderRepo OrderRepository,
	productRepo ProductRepository,
	outboxRepo OutboxEventRepository,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txManager:   txManager,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// PlaceOrder creates a PENDING order for the product. Archived products are
// indistinguishable from absent ones, and sellers cannot order their own
// listings.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, buyerID, productID uuid.UUID) (*domain.Order, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsArchived {
		return nil, productDomain.ErrProductNotFound
	}
	if product.SellerID == buyerID {
		return nil, domain.ErrSelfPurchase
	}

	order := &domain.Order{
		ID:        uuid.Must(uuid.NewV7()),
		BuyerID:   buyerID,
		SellerID:  product.SellerID,
		ProductID: productID,
		Status:    domain.StatusPending,
	}

	entry := &domain.TimelineEntry{
		ID:      uuid.Must(uuid.NewV7()),
		OrderID: order.ID,
		Status:  domain.StatusPending,
		Detail:  domain.NewTimelineDetail("Order placed"),
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := uc.orderRepo.CreateTimelineEntry(ctx, entry); err != nil {
			return err
		}
		return uc.enqueueEvent(ctx, order, contracts.EventOrderPlaced)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("buyer_id", buyerID.String()),
		slog.String("product_id", productID.String()),
	)

	order.Timeline = []*domain.TimelineEntry{entry}
	return order, nil
}

// ConfirmOrder moves a PENDING order to CONFIRMED. Seller only.
func (uc *OrderUseCase) ConfirmOrder(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error) {
	return uc.transition(ctx, orderID, domain.StatusConfirmed, transitionParams{
		callerID:  callerID,
		eventType: contracts.EventOrderConfirmed,
		detail:    domain.NewTimelineDetail("Order confirmed"),
		authorize: sellerOnly,
	})
}

// ShipOrder moves a CONFIRMED order to SHIPPED and records the tracking id.
// Seller only.
func (uc *OrderUseCase) ShipOrder(
	ctx context.Context,
	callerID, orderID uuid.UUID,
	trackingID string,
) (*domain.Order, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, domain.ErrTrackingIDRequired
	}

	return uc.transition(ctx, orderID, domain.StatusShipped, transitionParams{
		callerID:   callerID,
		eventType:  contracts.EventOrderShipped,
		detail:     domain.NewShippedTimelineDetail(trackingID),
		authorize:  sellerOnly,
		trackingID: trackingID,
	})
}

// CompleteOrder moves a SHIPPED order to COMPLETED. Buyer only.
func (uc *OrderUseCase) CompleteOrder(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error) {
	return uc.transition(ctx, orderID, domain.StatusCompleted, transitionParams{
		callerID:  callerID,
		eventType: contracts.EventOrderCompleted,
		detail:    domain.NewTimelineDetail("Order completed"),
		authorize: buyerOnly,
	})
}

// GetOrderByID returns an order with its full timeline
func (uc *OrderUseCase) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	timeline, err := uc.orderRepo.ListTimeline(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Timeline = timeline

	return order, nil
}

// ListOrdersForUser returns one page of the user's orders for the given role,
// newest first. The page and the total come from the same transaction so they
// agree with each other.
func (uc *OrderUseCase) ListOrdersForUser(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
	offset, limit int,
) (*ListOrdersOutput, error) {
	output := &ListOrdersOutput{}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		orders, err := uc.orderRepo.ListByUser(ctx, userID, role, offset, limit)
		if err != nil {
			return err
		}

		total, err := uc.orderRepo.CountByUser(ctx, userID, role)
		if err != nil {
			return err
		}

		output.Orders = orders
		output.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

type transitionParams struct {
	callerID   uuid.UUID
	eventType  string
	detail     []byte
	authorize  func(order *domain.Order, callerID uuid.UUID) error
	trackingID string
}

func sellerOnly(order *domain.Order, callerID uuid.UUID) error {
	if order.SellerID != callerID {
		return domain.ErrNotSeller
	}
	return nil
}

func buyerOnly(order *domain.Order, callerID uuid.UUID) error {
	if order.BuyerID != callerID {
		return domain.ErrNotBuyer
	}
	return nil
}

// transition performs one state machine step. The order row is locked before
// the authorization and status checks so concurrent transitions serialize, and
// the status update, timeline entry and outbox event commit atomically.
func (uc *OrderUseCase) transition(
	ctx context.Context,
	orderID uuid.UUID,
	target domain.Status,
	params transitionParams,
) (*domain.Order, error) {
	var order *domain.Order

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = uc.orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := params.authorize(order, params.callerID); err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(target) {
			return domain.InvalidTransitionError(order.Status, target)
		}

		order.Status = target
		if params.trackingID != "" {
			order.TrackingID = sql.NullString{String: params.trackingID, Valid: true}
		}

		if err := uc.orderRepo.UpdateStatus(ctx, order); err != nil {
			return err
		}

		entry := &domain.TimelineEntry{
			ID:      uuid.Must(uuid.NewV7()),
			OrderID: order.ID,
			Status:  target,
			Detail:  params.detail,
		}
		if err := uc.orderRepo.CreateTimelineEntry(ctx, entry); err != nil {
			return err
		}

		return uc.enqueueEvent(ctx, order, params.eventType)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order transitioned",
		slog.String("order_id", order.ID.String()),
		slog.String("status", string(order.Status)),
	)

	timeline, err := uc.orderRepo.ListTimeline(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Timeline = timeline

	return order, nil
}

// enqueueEvent writes the event envelope to the outbox inside the caller's
// transaction. The relay publishes it after commit.
func (uc *OrderUseCase) enqueueEvent(ctx context.Context, order *domain.Order, eventType string) error {
	payload := contracts.OrderEventPayload{
		BuyerID:  order.BuyerID.String(),
		SellerID: order.SellerID.String(),
	}

	switch eventType {
	case contracts.EventOrderPlaced:
		payload.ProductID = order.ProductID.String()
	case contracts.EventOrderShipped:
		payload.TrackingID = order.TrackingID.String
	}

	envelope := contracts.NewOrderEventEnvelope(eventType, order.ID.String(), time.Now(), payload)
	data, err := envelope.Marshal()
	if err != nil {
		return err
	}

	return uc.outboxRepo.Create(ctx, outboxDomain.NewPendingEvent(eventType, string(data)))
}
