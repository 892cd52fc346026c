// Package domain defines the chat domain entities and types.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/errors"
)

// Message is one chat message exchanged between two users about a product.
type Message struct {
	ID         uuid.UUID
	RoomKey    string
	ProductID  uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Body       string
	CreatedAt  time.Time
}

// RoomKey derives the canonical room identifier for a product conversation.
// The participant ids are sorted so both sides compute the same key.
func RoomKey(productID, userA, userB uuid.UUID) string {
	first, second := userA.String(), userB.String()
	if first > second {
		first, second = second, first
	}
	return strings.Join([]string{"room", productID.String(), first, second}, ":")
}

// Domain-specific errors for chat operations.
var (
	// ErrSelfMessage indicates a user tried to message themselves.
	ErrSelfMessage = errors.Wrap(errors.ErrInvalidInput, "cannot send a message to yourself")

	// ErrEmptyMessage indicates the message body is blank.
	ErrEmptyMessage = errors.Wrap(errors.ErrInvalidInput, "message body cannot be blank")
)
