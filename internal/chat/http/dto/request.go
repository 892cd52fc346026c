// Package dto provides request and response structures for chat HTTP handlers.
package dto

import (
	"github.com/jellydator/validation"

	customValidation "github.com/allisson/marketplace/internal/validation"
)

// SendMessageRequest is the payload for sending a chat message.
type SendMessageRequest struct {
	ProductID  string `json:"product_id"`
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
}

// Validate validates the send message request
func (r SendMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ReceiverID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Body, validation.Required, customValidation.NotBlank),
	)
}
