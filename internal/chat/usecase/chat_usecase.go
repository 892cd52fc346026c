// Package usecase implements chat business logic.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/validation"

	"github.com/allisson/marketplace/internal/chat/domain"
	customValidation "github.com/allisson/marketplace/internal/validation"

	productDomain "github.com/allisson/marketplace/internal/product/domain"
)

// MaxMessageLength is the maximum chat message body length in characters.
const MaxMessageLength = 2000

// ChatEvent is the payload published to a room's pub/sub channel on each
// new message.
type ChatEvent struct {
	MessageID  string    `json:"message_id"`
	RoomKey    string    `json:"room_key"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// UseCase defines the interface for chat business logic
type UseCase interface {
	SendMessage(ctx context.Context, senderID, receiverID, productID uuid.UUID, body string) (*domain.Message, error)
	History(ctx context.Context, callerID, otherID, productID uuid.UUID, offset, limit int) ([]*domain.Message, error)
}

// ChatRepository defines chat repository operations
type ChatRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByRoom(ctx context.Context, roomKey string, offset, limit int) ([]*domain.Message, error)
}

// ProductRepository defines the product lookups chat needs
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error)
}

// Publisher fans a chat event out to the room's subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, value any) error
}

// ChatUseCase persists product conversations and fans new messages out over
// pub/sub for connected clients.
type ChatUseCase struct {
	chatRepo    ChatRepository
	productRepo ProductRepository
	publisher   Publisher
	logger      *slog.Logger
}

// NewChatUseCase creates a new ChatUseCase
func NewChatUseCase(
	chatRepo ChatRepository,
	productRepo ProductRepository,
	publisher Publisher,
	logger *slog.Logger,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// SendMessage stores a message in the product's room and publishes it.
// The message must concern an existing product and cannot be self-addressed.
func (uc *ChatUseCase) SendMessage(
	ctx context.Context,
	senderID, receiverID, productID uuid.UUID,
	body string,
) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, domain.ErrSelfMessage
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}
	if err := validation.Validate(body,
		validation.RuneLength(0, MaxMessageLength).Error("message body must be at most 2000 characters"),
	); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	if _, err := uc.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:         uuid.Must(uuid.NewV7()),
		RoomKey:    domain.RoomKey(productID, senderID, receiverID),
		ProductID:  productID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.chatRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	event := ChatEvent{
		MessageID:  message.ID.String(),
		RoomKey:    message.RoomKey,
		SenderID:   senderID.String(),
		ReceiverID: receiverID.String(),
		Body:       body,
		CreatedAt:  message.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, message.RoomKey, event); err != nil {
		// Fanout is best-effort: the message is already persisted and will
		// show up in history.
		uc.logger.Warn("failed to publish chat event",
			slog.String("room_key", message.RoomKey),
			slog.Any("error", err),
		)
	}

	return message, nil
}

// History returns the room's messages between the caller and the other user,
// oldest first.
func (uc *ChatUseCase) History(
	ctx context.Context,
	callerID, otherID, productID uuid.UUID,
	offset, limit int,
) ([]*domain.Message, error) {
	if callerID == otherID {
		return nil, domain.ErrSelfMessage
	}

	roomKey := domain.RoomKey(productID, callerID, otherID)
	return uc.chatRepo.ListByRoom(ctx, roomKey, offset, limit)
}
