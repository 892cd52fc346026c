package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/marketplace/internal/contracts"
	"github.com/allisson/marketplace/internal/order/domain"

	apperrors "github.com/allisson/marketplace/internal/errors"
	outboxDomain "github.com/allisson/marketplace/internal/outbox/domain"
	productDomain "github.com/allisson/marketplace/internal/product/domain"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateTimelineEntry(ctx context.Context, entry *domain.TimelineEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOrderRepository) ListTimeline(ctx context.Context, orderID uuid.UUID) ([]*domain.TimelineEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TimelineEntry), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
	offset, limit int,
) ([]*domain.Order, error) {
	args := m.Called(ctx, userID, role, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID, role domain.Role) (int, error) {
	args := m.Called(ctx, userID, role)
	return args.Int(0), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productDomain.Product), args.Error(1)
}

// MockOutboxRepository is a mock implementation of OutboxEventRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockTxManager runs the function directly without a real transaction
type MockTxManager struct{}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type orderFixture struct {
	uc          *OrderUseCase
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	outboxRepo  *MockOutboxRepository
}

func setupOrderUseCase() *orderFixture {
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxRepository{}

	uc := NewOrderUseCase(
		&MockTxManager{},
		orderRepo,
		productRepo,
		outboxRepo,
		slog.New(slog.DiscardHandler),
	)

	return &orderFixture{uc: uc, orderRepo: orderRepo, productRepo: productRepo, outboxRepo: outboxRepo}
}

func parseOutboxEnvelope(t *testing.T, event *outboxDomain.OutboxEvent) contracts.OrderEventEnvelope {
	t.Helper()
	envelope, err := contracts.ParseOrderEventEnvelope([]byte(event.Payload))
	require.NoError(t, err)
	return envelope
}

func TestOrderUseCase_PlaceOrder(t *testing.T) {
	t.Run("creates pending order with timeline and outbox event", func(t *testing.T) {
		f := setupOrderUseCase()
		buyerID := uuid.Must(uuid.NewV7())
		sellerID := uuid.Must(uuid.NewV7())
		productID := uuid.Must(uuid.NewV7())

		f.productRepo.On("GetByID", mock.Anything, productID).Return(&productDomain.Product{
			ID:       productID,
			SellerID: sellerID,
		}, nil)
		f.orderRepo.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.StatusPending && o.BuyerID == buyerID && o.SellerID == sellerID
		})).Return(nil)
		f.orderRepo.On("CreateTimelineEntry", mock.Anything, mock.MatchedBy(func(e *domain.TimelineEntry) bool {
			return e.Status == domain.StatusPending
		})).Return(nil)

		var captured *outboxDomain.OutboxEvent
		f.outboxRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*outboxDomain.OutboxEvent)
		}).Return(nil)

		order, err := f.uc.PlaceOrder(context.Background(), buyerID, productID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, order.Status)
		require.Len(t, order.Timeline, 1)

		var detail map[string]string
		require.NoError(t, json.Unmarshal(order.Timeline[0].Detail, &detail))
		assert.Equal(t, "Order placed", detail["message"])

		require.NotNil(t, captured)
		envelope := parseOutboxEnvelope(t, captured)
		assert.Equal(t, contracts.EventOrderPlaced, envelope.EventType)
		assert.Equal(t, order.ID.String(), envelope.OrderID)
		assert.Equal(t, buyerID.String(), envelope.Payload.BuyerID)
		assert.Equal(t, sellerID.String(), envelope.Payload.SellerID)
		assert.Equal(t, productID.String(), envelope.Payload.ProductID)
		assert.Empty(t, envelope.Payload.TrackingID)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := setupOrderUseCase()
		productID := uuid.Must(uuid.NewV7())

		f.productRepo.On("GetByID", mock.Anything, productID).Return(nil, productDomain.ErrProductNotFound)

		_, err := f.uc.PlaceOrder(context.Background(), uuid.Must(uuid.NewV7()), productID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("archived product is indistinguishable from absent", func(t *testing.T) {
		f := setupOrderUseCase()
		productID := uuid.Must(uuid.NewV7())

		f.productRepo.On("GetByID", mock.Anything, productID).Return(&productDomain.Product{
			ID:         productID,
			SellerID:   uuid.Must(uuid.NewV7()),
			IsArchived: true,
		}, nil)

		_, err := f.uc.PlaceOrder(context.Background(), uuid.Must(uuid.NewV7()), productID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.orderRepo.AssertNotCalled(t, "Create")
	})

	t.Run("seller cannot order own product", func(t *testing.T) {
		f := setupOrderUseCase()
		sellerID := uuid.Must(uuid.NewV7())
		productID := uuid.Must(uuid.NewV7())

		f.productRepo.On("GetByID", mock.Anything, productID).Return(&productDomain.Product{
			ID:       productID,
			SellerID: sellerID,
		}, nil)

		_, err := f.uc.PlaceOrder(context.Background(), sellerID, productID)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.orderRepo.AssertNotCalled(t, "Create")
	})
}

func TestOrderUseCase_ConfirmOrder(t *testing.T) {
	buyerID := uuid.Must(uuid.NewV7())
	sellerID := uuid.Must(uuid.NewV7())
	orderID := uuid.Must(uuid.NewV7())

	pendingOrder := func() *domain.Order {
		return &domain.Order{
			ID:       orderID,
			BuyerID:  buyerID,
			SellerID: sellerID,
			Status:   domain.StatusPending,
		}
	}

	t.Run("seller confirms pending order", func(t *testing.T) {
		f := setupOrderUseCase()

		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(pendingOrder(), nil)
		f.orderRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.StatusConfirmed
		})).Return(nil)
		f.orderRepo.On("CreateTimelineEntry", mock.Anything, mock.MatchedBy(func(e *domain.TimelineEntry) bool {
			return e.Status == domain.StatusConfirmed
		})).Return(nil)
		f.orderRepo.On("ListTimeline", mock.Anything, orderID).Return([]*domain.TimelineEntry{{}, {}}, nil)

		var captured *outboxDomain.OutboxEvent
		f.outboxRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*outboxDomain.OutboxEvent)
		}).Return(nil)

		order, err := f.uc.ConfirmOrder(context.Background(), sellerID, orderID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, order.Status)
		assert.Len(t, order.Timeline, 2)

		envelope := parseOutboxEnvelope(t, captured)
		assert.Equal(t, contracts.EventOrderConfirmed, envelope.EventType)
		assert.Empty(t, envelope.Payload.ProductID)
	})

	t.Run("buyer cannot confirm", func(t *testing.T) {
		f := setupOrderUseCase()

		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(pendingOrder(), nil)

		_, err := f.uc.ConfirmOrder(context.Background(), buyerID, orderID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.orderRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("already confirmed order", func(t *testing.T) {
		f := setupOrderUseCase()

		confirmed := pendingOrder()
		confirmed.Status = domain.StatusConfirmed
		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(confirmed, nil)

		_, err := f.uc.ConfirmOrder(context.Background(), sellerID, orderID)

		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		f.orderRepo.AssertNotCalled(t, "UpdateStatus")
	})
}

func TestOrderUseCase_ShipOrder(t *testing.T) {
	buyerID := uuid.Must(uuid.NewV7())
	sellerID := uuid.Must(uuid.NewV7())
	orderID := uuid.Must(uuid.NewV7())

	confirmedOrder := func() *domain.Order {
		return &domain.Order{
			ID:       orderID,
			BuyerID:  buyerID,
			SellerID: sellerID,
			Status:   domain.StatusConfirmed,
		}
	}

	t.Run("seller ships with tracking id", func(t *testing.T) {
		f := setupOrderUseCase()

		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(confirmedOrder(), nil)
		f.orderRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.StatusShipped && o.TrackingID.String == "TRACK-123"
		})).Return(nil)
		f.orderRepo.On("CreateTimelineEntry", mock.Anything, mock.MatchedBy(func(e *domain.TimelineEntry) bool {
			var detail map[string]string
			if err := json.Unmarshal(e.Detail, &detail); err != nil {
				return false
			}
			return e.Status == domain.StatusShipped && detail["trackingId"] == "TRACK-123"
		})).Return(nil)
		f.orderRepo.On("ListTimeline", mock.Anything, orderID).Return([]*domain.TimelineEntry{{}, {}, {}}, nil)

		var captured *outboxDomain.OutboxEvent
		f.outboxRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*outboxDomain.OutboxEvent)
		}).Return(nil)

		order, err := f.uc.ShipOrder(context.Background(), sellerID, orderID, "TRACK-123")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, order.Status)
		assert.Equal(t, "TRACK-123", order.TrackingID.String)

		envelope := parseOutboxEnvelope(t, captured)
		assert.Equal(t, contracts.EventOrderShipped, envelope.EventType)
		assert.Equal(t, "TRACK-123", envelope.Payload.TrackingID)
	})

	t.Run("blank tracking id", func(t *testing.T) {
		f := setupOrderUseCase()

		_, err := f.uc.ShipOrder(context.Background(), sellerID, orderID, "   ")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.orderRepo.AssertNotCalled(t, "GetByIDForUpdate")
	})

	t.Run("buyer cannot ship and the order stays confirmed", func(t *testing.T) {
		f := setupOrderUseCase()

		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(confirmedOrder(), nil)

		_, err := f.uc.ShipOrder(context.Background(), buyerID, orderID, "TRACK-123")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.orderRepo.AssertNotCalled(t, "UpdateStatus")
		f.outboxRepo.AssertNotCalled(t, "Create")
	})

	t.Run("cannot ship pending order", func(t *testing.T) {
		f := setupOrderUseCase()

		pending := confirmedOrder()
		pending.Status = domain.StatusPending
		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(pending, nil)

		_, err := f.uc.ShipOrder(context.Background(), sellerID, orderID, "TRACK-123")

		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestOrderUseCase_CompleteOrder(t *testing.T) {
	buyerID := uuid.Must(uuid.NewV7())
	sellerID := uuid.Must(uuid.NewV7())
	orderID := uuid.Must(uuid.NewV7())

	shippedOrder := func() *domain.Order {
		return &domain.Order{
			ID:       orderID,
			BuyerID:  buyerID,
			SellerID: sellerID,
			Status:   domain.StatusShipped,
		}
	}

	t.Run("buyer completes shipped order", func(t *testing.T) {
		f := setupOrderUseCase()

		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(shippedOrder(), nil)
		f.orderRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.StatusCompleted
		})).Return(nil)
		f.orderRepo.On("CreateTimelineEntry", mock.Anything, mock.Anything).Return(nil)
		f.orderRepo.On("ListTimeline", mock.Anything, orderID).Return([]*domain.TimelineEntry{{}, {}, {}, {}}, nil)

		var captured *outboxDomain.OutboxEvent
		f.outboxRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*outboxDomain.OutboxEvent)
		}).Return(nil)

		order, err := f.uc.CompleteOrder(context.Background(), buyerID, orderID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, order.Status)
		assert.Len(t, order.Timeline, 4)

		envelope := parseOutboxEnvelope(t, captured)
		assert.Equal(t, contracts.EventOrderCompleted, envelope.EventType)
	})

	t.Run("seller cannot complete", func(t *testing.T) {
		f := setupOrderUseCase()

		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(shippedOrder(), nil)

		_, err := f.uc.CompleteOrder(context.Background(), sellerID, orderID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("cannot complete twice", func(t *testing.T) {
		f := setupOrderUseCase()

		completed := shippedOrder()
		completed.Status = domain.StatusCompleted
		f.orderRepo.On("GetByIDForUpdate", mock.Anything, orderID).Return(completed, nil)

		_, err := f.uc.CompleteOrder(context.Background(), buyerID, orderID)

		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestOrderUseCase_GetOrderByID(t *testing.T) {
	t.Run("returns order with timeline", func(t *testing.T) {
		f := setupOrderUseCase()
		orderID := uuid.Must(uuid.NewV7())

		f.orderRepo.On("GetByID", mock.Anything, orderID).Return(&domain.Order{
			ID:     orderID,
			Status: domain.StatusPending,
		}, nil)
		f.orderRepo.On("ListTimeline", mock.Anything, orderID).Return([]*domain.TimelineEntry{{OrderID: orderID}}, nil)

		order, err := f.uc.GetOrderByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Len(t, order.Timeline, 1)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := setupOrderUseCase()
		orderID := uuid.Must(uuid.NewV7())

		f.orderRepo.On("GetByID", mock.Anything, orderID).Return(nil, domain.ErrOrderNotFound)

		_, err := f.uc.GetOrderByID(context.Background(), orderID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestOrderUseCase_ListOrdersForUser(t *testing.T) {
	f := setupOrderUseCase()
	userID := uuid.Must(uuid.NewV7())

	orders := []*domain.Order{
		{ID: uuid.Must(uuid.NewV7()), BuyerID: userID},
		{ID: uuid.Must(uuid.NewV7()), BuyerID: userID},
	}
	f.orderRepo.On("ListByUser", mock.Anything, userID, domain.RoleBuyer, 0, 50).Return(orders, nil)
	f.orderRepo.On("CountByUser", mock.Anything, userID, domain.RoleBuyer).Return(7, nil)

	output, err := f.uc.ListOrdersForUser(context.Background(), userID, domain.RoleBuyer, 0, 50)

	require.NoError(t, err)
	assert.Len(t, output.Orders, 2)
	assert.Equal(t, 7, output.Total)
}
