// Package usecase implements the product business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/marketplace/internal/cache"
	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/product/domain"
	appValidation "github.com/allisson/marketplace/internal/validation"
)

// CreateProductInput contains the input data for creating a product
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
}

// UpdateProductInput contains the input data for updating a product
type UpdateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
}

// SearchOutput is a page of products with the total match count.
type SearchOutput struct {
	Products []*domain.Product
	Total    int
}

// UseCase defines the interface for product business logic operations
type UseCase interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, callerID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Archive(ctx context.Context, callerID, productID uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, callerID, productID uuid.UUID) error
	GetByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	Search(ctx context.Context, filter domain.SearchFilter, offset, limit int) (*SearchOutput, error)
	ListMine(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*domain.Product, error)
}

// Repository interface defines product repository operations
type Repository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter domain.SearchFilter, offset, limit int) ([]*domain.Product, error)
	Count(ctx context.Context, filter domain.SearchFilter) (int, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*domain.Product, error)
}

// ProductUseCase handles product-related business logic with a redis
// read-through cache on GetByID.
type ProductUseCase struct {
	txManager database.TxManager
	repo      Repository
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewProductUseCase creates a new ProductUseCase
func NewProductUseCase(
	txManager database.TxManager,
	repo Repository,
	productCache *cache.Cache,
	logger *slog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txManager: txManager,
		repo:      repo,
		cache:     productCache,
		logger:    logger,
	}
}

func validateProductInput(name, description string, price float64, stock int) error {
	err := validation.Errors{
		"name": validation.Validate(name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		"description": validation.Validate(description,
			validation.Length(0, 4000).Error("description must be at most 4000 characters"),
		),
		"price": validation.Validate(price,
			validation.Min(0.01).Error("price must be positive"),
		),
		"stock": validation.Validate(stock,
			validation.Min(0).Error("stock cannot be negative"),
		),
	}.Filter()
	return appValidation.WrapValidationError(err)
}

// Create lists a new product for the seller
func (uc *ProductUseCase) Create(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*domain.Product, error) {
	if err := validateProductInput(input.Name, input.Description, input.Price, input.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.Must(uuid.NewV7()),
		SellerID:    sellerID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update modifies a product owned by the caller and invalidates its cache entry
func (uc *ProductUseCase) Update(ctx context.Context, callerID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	if err := validateProductInput(input.Name, input.Description, input.Price, input.Stock); err != nil {
		return nil, err
	}

	product, err := uc.ensureOwnership(ctx, callerID, productID)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.Stock = input.Stock

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, productID)
	return product, nil
}

// Archive removes a product from search and ordering without deleting it
func (uc *ProductUseCase) Archive(ctx context.Context, callerID, productID uuid.UUID) (*domain.Product, error) {
	product, err := uc.ensureOwnership(ctx, callerID, productID)
	if err != nil {
		return nil, err
	}

	product.IsArchived = true
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, productID)
	return product, nil
}

// Delete removes a product owned by the caller
func (uc *ProductUseCase) Delete(ctx context.Context, callerID, productID uuid.UUID) error {
	if _, err := uc.ensureOwnership(ctx, callerID, productID); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, productID); err != nil {
		return err
	}

	uc.invalidate(ctx, productID)
	return nil
}

// GetByID retrieves a product, serving from the cache when possible.
// Cache failures fall back to the database.
func (uc *ProductUseCase) GetByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	key := productCacheKey(productID)

	var cached domain.Product
	found, err := uc.cache.Get(ctx, key, &cached)
	if err != nil {
		uc.logger.Warn("product cache read failed", slog.Any("error", err))
	}
	if found {
		return &cached, nil
	}

	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, key, product); err != nil {
		uc.logger.Warn("product cache write failed", slog.Any("error", err))
	}
	return product, nil
}

// Search returns a page of products and the total match count read in a
// single transaction so the page and count agree.
func (uc *ProductUseCase) Search(ctx context.Context, filter domain.SearchFilter, offset, limit int) (*SearchOutput, error) {
	var output SearchOutput

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		products, err := uc.repo.Search(ctx, filter, offset, limit)
		if err != nil {
			return err
		}

		total, err := uc.repo.Count(ctx, filter)
		if err != nil {
			return err
		}

		output.Products = products
		output.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &output, nil
}

// ListMine returns the caller's own products, archived included
func (uc *ProductUseCase) ListMine(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*domain.Product, error) {
	return uc.repo.ListBySeller(ctx, sellerID, offset, limit)
}

// ensureOwnership loads the product and verifies the caller owns it.
// A missing product reports not found before ownership is considered.
func (uc *ProductUseCase) ensureOwnership(ctx context.Context, callerID, productID uuid.UUID) (*domain.Product, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != callerID {
		return nil, domain.ErrNotProductOwner
	}
	return product, nil
}

func (uc *ProductUseCase) invalidate(ctx context.Context, productID uuid.UUID) {
	if err := uc.cache.Delete(ctx, productCacheKey(productID)); err != nil {
		uc.logger.Warn("product cache invalidation failed", slog.Any("error", err))
	}
}

func productCacheKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID)
}
