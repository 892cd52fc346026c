// Package http provides HTTP handlers for chat operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/marketplace/internal/auth/http"
	"github.com/allisson/marketplace/internal/chat/http/dto"
	"github.com/allisson/marketplace/internal/chat/usecase"
	apperrors "github.com/allisson/marketplace/internal/errors"
	"github.com/allisson/marketplace/internal/httputil"
	customValidation "github.com/allisson/marketplace/internal/validation"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatUseCase usecase.UseCase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		logger:      logger,
	}
}

// Send stores a chat message about a product and fans it out to the room.
// POST /v1/chat/messages - Returns 201 Created.
func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid product_id format: must be a valid UUID"), h.logger)
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid receiver_id format: must be a valid UUID"), h.logger)
		return
	}

	message, err := h.chatUseCase.SendMessage(c.Request.Context(), userID, receiverID, productID, req.Body)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(message))
}

// History returns the conversation between the caller and another user about
// a product, oldest first.
// GET /v1/chat/messages?product_id=&user_id=&offset=&limit=
func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid product_id format: must be a valid UUID"), h.logger)
		return
	}

	otherID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid user_id format: must be a valid UUID"), h.logger)
		return
	}

	messages, err := h.chatUseCase.History(c.Request.Context(), userID, otherID, productID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageListResponse(messages, offset, limit))
}
