package dto

import (
	"encoding/json"
	"time"

	"github.com/allisson/marketplace/internal/order/domain"
)

// TimelineEntryResponse is one audit record of an order transition.
type TimelineEntryResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Detail    json.RawMessage `json:"detail"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderResponse is the public representation of an order with its timeline.
type OrderResponse struct {
	ID         string                  `json:"id"`
	BuyerID    string                  `json:"buyer_id"`
	SellerID   string                  `json:"seller_id"`
	ProductID  string                  `json:"product_id"`
	Status     string                  `json:"status"`
	TrackingID string                  `json:"tracking_id,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
	Timeline   []TimelineEntryResponse `json:"timeline"`
}

// OrderListResponse is a page of orders with the total count.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// ToOrderResponse converts a domain order to its response representation.
func ToOrderResponse(order *domain.Order) OrderResponse {
	timeline := make([]TimelineEntryResponse, 0, len(order.Timeline))
	for _, entry := range order.Timeline {
		timeline = append(timeline, TimelineEntryResponse{
			ID:        entry.ID.String(),
			Status:    string(entry.Status),
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}

	response := OrderResponse{
		ID:        order.ID.String(),
		BuyerID:   order.BuyerID.String(),
		SellerID:  order.SellerID.String(),
		ProductID: order.ProductID.String(),
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
		Timeline:  timeline,
	}
	if order.TrackingID.Valid {
		response.TrackingID = order.TrackingID.String
	}
	return response
}

// ToOrderListResponse converts a page of orders to its response representation.
func ToOrderListResponse(orders []*domain.Order, total, offset, limit int) OrderListResponse {
	items := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, ToOrderResponse(order))
	}
	return OrderListResponse{
		Orders: items,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}
}
