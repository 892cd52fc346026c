package dto

import (
	"time"

	"github.com/allisson/marketplace/internal/product/domain"
)

// ProductResponse is the public representation of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResponse is a page of products with the total match count.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// ToProductResponse converts a domain product to its response representation.
func ToProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID.String(),
		SellerID:    product.SellerID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsArchived:  product.IsArchived,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// ToProductListResponse converts a page of products to its response representation.
func ToProductListResponse(products []*domain.Product, total, offset, limit int) ProductListResponse {
	items := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		items = append(items, ToProductResponse(product))
	}
	return ProductListResponse{
		Products: items,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	}
}
