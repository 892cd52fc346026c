// Package dto defines request and response payloads for the product endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/marketplace/internal/product/usecase"
)

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// Validate checks the request structure. Range validation happens in the use case.
func (r ProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required")),
	)
}

// ToCreateProductInput converts the request to a use case input.
func ToCreateProductInput(r ProductRequest) usecase.CreateProductInput {
	return usecase.CreateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

// ToUpdateProductInput converts the request to a use case input.
func ToUpdateProductInput(r ProductRequest) usecase.UpdateProductInput {
	return usecase.UpdateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}
