// Package http provides HTTP handlers for notification operations.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/marketplace/internal/auth/http"
	apperrors "github.com/allisson/marketplace/internal/errors"
	"github.com/allisson/marketplace/internal/httputil"
	"github.com/allisson/marketplace/internal/notification/domain"
	"github.com/allisson/marketplace/internal/notification/usecase"
)

// NotificationResponse is the public representation of a notification.
type NotificationResponse struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id,omitempty"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationListResponse is a page of notifications with the total count.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	Offset        int                    `json:"offset"`
	Limit         int                    `json:"limit"`
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationUseCase usecase.UseCase
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationUseCase usecase.UseCase, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		logger:              logger,
	}
}

// List returns the authenticated user's notifications, newest first.
// GET /v1/notifications?offset=&limit=
func (h *NotificationHandler) List(c *gin.Context) {
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

	output, err := h.notificationUseCase.ListForRecipient(c.Request.Context(), userID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toListResponse(output, offset, limit))
}

func toListResponse(output *usecase.ListNotificationsOutput, offset, limit int) NotificationListResponse {
	items := make([]NotificationResponse, 0, len(output.Notifications))
	for _, notification := range output.Notifications {
		items = append(items, toResponse(notification))
	}
	return NotificationListResponse{
		Notifications: items,
		Total:         output.Total,
		Offset:        offset,
		Limit:         limit,
	}
}

func toResponse(notification *domain.Notification) NotificationResponse {
	response := NotificationResponse{
		ID:        notification.ID.String(),
		Type:      notification.Type,
		Payload:   notification.Payload,
		CreatedAt: notification.CreatedAt,
	}
	if notification.OrderID.Valid {
		response.OrderID = notification.OrderID.UUID.String()
	}
	return response
}
