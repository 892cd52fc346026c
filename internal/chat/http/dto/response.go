package dto

import (
	"time"

	"github.com/allisson/marketplace/internal/chat/domain"
)

// MessageResponse is the public representation of a chat message.
type MessageResponse struct {
	ID         string    `json:"id"`
	RoomKey    string    `json:"room_key"`
	ProductID  string    `json:"product_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageListResponse is a page of chat messages.
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// ToMessageResponse converts a domain message to its response representation.
func ToMessageResponse(message *domain.Message) MessageResponse {
	return MessageResponse{
		ID:         message.ID.String(),
		RoomKey:    message.RoomKey,
		ProductID:  message.ProductID.String(),
		SenderID:   message.SenderID.String(),
		ReceiverID: message.ReceiverID.String(),
		Body:       message.Body,
		CreatedAt:  message.CreatedAt,
	}
}

// ToMessageListResponse converts a page of messages to its response representation.
func ToMessageListResponse(messages []*domain.Message, offset, limit int) MessageListResponse {
	items := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, ToMessageResponse(message))
	}
	return MessageListResponse{
		Messages: items,
		Offset:   offset,
		Limit:    limit,
	}
}
