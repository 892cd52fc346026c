package usecase

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/marketplace/internal/cache"
	"github.com/allisson/marketplace/internal/chat/domain"

	apperrors "github.com/allisson/marketplace/internal/errors"
	productDomain "github.com/allisson/marketplace/internal/product/domain"
)

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) ListByRoom(
	ctx context.Context,
	roomKey string,
	offset, limit int,
) ([]*domain.Message, error) {
	args := m.Called(ctx, roomKey, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productDomain.Product), args.Error(1)
}

type chatFixture struct {
	uc          *ChatUseCase
	chatRepo    *MockChatRepository
	productRepo *MockProductRepository
	cache       *cache.Cache
}

func setupChatUseCase(t *testing.T) *chatFixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisCache := cache.NewWithClient(client, time.Minute)

	chatRepo := &MockChatRepository{}
	productRepo := &MockProductRepository{}

	uc := NewChatUseCase(chatRepo, productRepo, redisCache, slog.New(slog.DiscardHandler))

	return &chatFixture{uc: uc, chatRepo: chatRepo, productRepo: productRepo, cache: redisCache}
}

func TestChatUseCase_SendMessage(t *testing.T) {
	f := setupChatUseCase(t)
	senderID := uuid.Must(uuid.NewV7())
	receiverID := uuid.Must(uuid.NewV7())
	productID := uuid.Must(uuid.NewV7())

	f.productRepo.On("GetByID", mock.Anything, productID).Return(&productDomain.Product{ID: productID}, nil)
	f.chatRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.Body == "is this still available?" && m.RoomKey == domain.RoomKey(productID, senderID, receiverID)
	})).Return(nil)

	roomKey := domain.RoomKey(productID, senderID, receiverID)
	sub := f.cache.Subscribe(context.Background(), roomKey)
	defer sub.Close()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	message, err := f.uc.SendMessage(context.Background(), senderID, receiverID, productID, "is this still available?")

	require.NoError(t, err)
	assert.Equal(t, roomKey, message.RoomKey)

	select {
	case event := <-sub.Channel():
		assert.Contains(t, event.Payload, message.ID.String())
		assert.Contains(t, event.Payload, "is this still available?")
	case <-time.After(time.Second):
		t.Fatal("no chat event received on room channel")
	}
}

func TestChatUseCase_SendMessage_Validation(t *testing.T) {
	senderID := uuid.Must(uuid.NewV7())
	receiverID := uuid.Must(uuid.NewV7())
	productID := uuid.Must(uuid.NewV7())

	t.Run("self message", func(t *testing.T) {
		f := setupChatUseCase(t)

		_, err := f.uc.SendMessage(context.Background(), senderID, senderID, productID, "hi")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.chatRepo.AssertNotCalled(t, "Create")
	})

	t.Run("blank body", func(t *testing.T) {
		f := setupChatUseCase(t)

		_, err := f.uc.SendMessage(context.Background(), senderID, receiverID, productID, "   ")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := setupChatUseCase(t)

		f.productRepo.On("GetByID", mock.Anything, productID).Return(nil, productDomain.ErrProductNotFound)

		_, err := f.uc.SendMessage(context.Background(), senderID, receiverID, productID, "hi")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		f := setupChatUseCase(t)

		_, err := f.uc.SendMessage(
			context.Background(), senderID, receiverID, productID,
			strings.Repeat("a", MaxMessageLength+1),
		)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.chatRepo.AssertNotCalled(t, "Create")
	})

	t.Run("length limit counts characters, not bytes", func(t *testing.T) {
		f := setupChatUseCase(t)

		// 1999 ASCII characters plus one multi-byte rune exceeds the limit
		// in bytes but not in characters; the body must be stored intact.
		body := strings.Repeat("a", MaxMessageLength-1) + "€"

		f.productRepo.On("GetByID", mock.Anything, productID).Return(&productDomain.Product{ID: productID}, nil)
		f.chatRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
			return m.Body == body && utf8.ValidString(m.Body)
		})).Return(nil)

		message, err := f.uc.SendMessage(context.Background(), senderID, receiverID, productID, body)

		require.NoError(t, err)
		assert.Equal(t, body, message.Body)
		assert.True(t, utf8.ValidString(message.Body))
	})
}

func TestChatUseCase_History(t *testing.T) {
	f := setupChatUseCase(t)
	callerID := uuid.Must(uuid.NewV7())
	otherID := uuid.Must(uuid.NewV7())
	productID := uuid.Must(uuid.NewV7())

	roomKey := domain.RoomKey(productID, callerID, otherID)
	messages := []*domain.Message{
		{ID: uuid.Must(uuid.NewV7()), RoomKey: roomKey, Body: "first"},
		{ID: uuid.Must(uuid.NewV7()), RoomKey: roomKey, Body: "second"},
	}
	f.chatRepo.On("ListByRoom", mock.Anything, roomKey, 0, 50).Return(messages, nil)

	result, err := f.uc.History(context.Background(), callerID, otherID, productID, 0, 50)

	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestChatUseCase_History_SameRoomKeyFromBothSides(t *testing.T) {
	f := setupChatUseCase(t)
	callerID := uuid.Must(uuid.NewV7())
	otherID := uuid.Must(uuid.NewV7())
	productID := uuid.Must(uuid.NewV7())

	roomKey := domain.RoomKey(productID, callerID, otherID)
	f.chatRepo.On("ListByRoom", mock.Anything, roomKey, 0, 50).Return([]*domain.Message{}, nil).Twice()

	_, err := f.uc.History(context.Background(), callerID, otherID, productID, 0, 50)
	require.NoError(t, err)

	// The other participant resolves the same room.
	_, err = f.uc.History(context.Background(), otherID, callerID, productID, 0, 50)
	require.NoError(t, err)

	f.chatRepo.AssertExpectations(t)
}
