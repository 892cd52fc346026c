// Package domain defines the product domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/errors"
)

// Product is an item listed for sale by a user.
type Product struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	Name        string
	Description string
	Price       float64
	Stock       int
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchFilter narrows a product search. Zero values mean "no filter".
type SearchFilter struct {
	Query    string
	SellerID uuid.UUID
	MinPrice float64
	MaxPrice float64
}

// Domain-specific errors for product operations.
var (
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.Wrap(errors.ErrNotFound, "product not found")

	// ErrNotProductOwner indicates the caller does not own the product.
	ErrNotProductOwner = errors.Wrap(errors.ErrForbidden, "only the product owner can modify it")

	// ErrProductArchived indicates the product was archived and cannot be ordered.
	ErrProductArchived = errors.Wrap(errors.ErrInvalidState, "product is archived")
)
