package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/marketplace/internal/cache"
	apperrors "github.com/allisson/marketplace/internal/errors"
	"github.com/allisson/marketplace/internal/product/domain"
)

// MockProductRepository is a mock implementation of Repository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, filter domain.SearchFilter, offset, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter domain.SearchFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, sellerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// MockTxManager runs the function directly without a real transaction
type MockTxManager struct{}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func setupProductUseCase(t *testing.T) (*ProductUseCase, *MockProductRepository) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	mockRepo := &MockProductRepository{}
	uc := NewProductUseCase(
		&MockTxManager{},
		mockRepo,
		cache.NewWithClient(client, 5*time.Minute),
		slog.New(slog.DiscardHandler),
	)
	return uc, mockRepo
}

func TestProductUseCase_Create(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()
	sellerID := uuid.Must(uuid.NewV7())

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := uc.Create(ctx, sellerID, CreateProductInput{
		Name:  "vintage camera",
		Price: 120.50,
		Stock: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, sellerID, product.SellerID)
	assert.Equal(t, "vintage camera", product.Name)
	assert.False(t, product.IsArchived)
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_Create_Invalid(t *testing.T) {
	uc, _ := setupProductUseCase(t)
	ctx := context.Background()
	sellerID := uuid.Must(uuid.NewV7())

	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"blank name", CreateProductInput{Name: "  ", Price: 10, Stock: 1}},
		{"zero price", CreateProductInput{Name: "item", Price: 0, Stock: 1}},
		{"negative stock", CreateProductInput{Name: "item", Price: 10, Stock: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, sellerID, tt.input)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestProductUseCase_Update_NotOwner(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()

	ownerID := uuid.Must(uuid.NewV7())
	strangerID := uuid.Must(uuid.NewV7())
	productID := uuid.Must(uuid.NewV7())

	mockRepo.On("GetByID", ctx, productID).Return(&domain.Product{ID: productID, SellerID: ownerID}, nil)

	_, err := uc.Update(ctx, strangerID, productID, UpdateProductInput{Name: "item", Price: 10, Stock: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestProductUseCase_Update_NotFoundBeforeOwnership(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())

	mockRepo.On("GetByID", ctx, productID).Return(nil, domain.ErrProductNotFound)

	_, err := uc.Update(ctx, uuid.Must(uuid.NewV7()), productID, UpdateProductInput{Name: "item", Price: 10, Stock: 1})
	// A missing product is reported as not found, not forbidden.
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestProductUseCase_GetByID_CacheReadThrough(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()

	product := &domain.Product{
		ID:       uuid.Must(uuid.NewV7()),
		SellerID: uuid.Must(uuid.NewV7()),
		Name:     "vintage camera",
		Price:    120.50,
	}

	// The repository is hit exactly once: the second call is served from cache.
	mockRepo.On("GetByID", ctx, product.ID).Return(product, nil).Once()

	first, err := uc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, first.Name)

	second, err := uc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, second.ID)
	assert.Equal(t, product.Name, second.Name)

	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_Update_InvalidatesCache(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()

	ownerID := uuid.Must(uuid.NewV7())
	product := &domain.Product{ID: uuid.Must(uuid.NewV7()), SellerID: ownerID, Name: "old", Price: 10, Stock: 1}

	// Warm the cache.
	mockRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	_, err := uc.GetByID(ctx, product.ID)
	require.NoError(t, err)

	mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	_, err = uc.Update(ctx, ownerID, product.ID, UpdateProductInput{Name: "new", Price: 20, Stock: 1})
	require.NoError(t, err)

	// After invalidation the next read goes to the repository again.
	updated := &domain.Product{ID: product.ID, SellerID: ownerID, Name: "new", Price: 20, Stock: 1}
	mockRepo.ExpectedCalls = nil
	mockRepo.On("GetByID", ctx, product.ID).Return(updated, nil).Once()

	loaded, err := uc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Name)
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_Search(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()

	filter := domain.SearchFilter{Query: "keyboard"}
	products := []*domain.Product{
		{ID: uuid.Must(uuid.NewV7()), Name: "mechanical keyboard"},
	}

	mockRepo.On("Search", mock.Anything, filter, 0, 50).Return(products, nil)
	mockRepo.On("Count", mock.Anything, filter).Return(7, nil)

	output, err := uc.Search(ctx, filter, 0, 50)
	require.NoError(t, err)
	assert.Len(t, output.Products, 1)
	assert.Equal(t, 7, output.Total)
}

func TestProductUseCase_Archive(t *testing.T) {
	uc, mockRepo := setupProductUseCase(t)
	ctx := context.Background()

	ownerID := uuid.Must(uuid.NewV7())
	product := &domain.Product{ID: uuid.Must(uuid.NewV7()), SellerID: ownerID, Name: "item", Price: 10}

	mockRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.IsArchived
	})).Return(nil)

	archived, err := uc.Archive(ctx, ownerID, product.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	mockRepo.AssertExpectations(t)
}
