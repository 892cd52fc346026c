// Package dto provides request and response structures for order HTTP handlers.
package dto

import (
	"github.com/jellydator/validation"

	customValidation "github.com/allisson/marketplace/internal/validation"
)

// PlaceOrderRequest is the payload for placing a new order.
type PlaceOrderRequest struct {
	ProductID string `json:"product_id"`
}

// Validate validates the place order request
func (r PlaceOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, customValidation.NotBlank),
	)
}

// ShipOrderRequest is the payload for shipping an order.
type ShipOrderRequest struct {
	TrackingID string `json:"tracking_id"`
}

// Validate validates the ship order request
func (r ShipOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TrackingID,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(5, 0).Error("tracking id must be at least 5 characters"),
		),
	)
}
