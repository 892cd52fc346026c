// Package http provides HTTP handlers for order operations.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/marketplace/internal/auth/http"
	apperrors "github.com/allisson/marketplace/internal/errors"
	"github.com/allisson/marketplace/internal/httputil"
	"github.com/allisson/marketplace/internal/order/domain"
	"github.com/allisson/marketplace/internal/order/http/dto"
	"github.com/allisson/marketplace/internal/order/usecase"
	customValidation "github.com/allisson/marketplace/internal/validation"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderUseCase usecase.UseCase
	logger       *slog.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderUseCase usecase.UseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		logger:       logger,
	}
}

// Place creates a new order for the authenticated buyer.
// POST /v1/orders - Returns 201 Created.
func (h *OrderHandler) Place(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.PlaceOrderRequest
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

	order, err := h.orderUseCase.PlaceOrder(c.Request.Context(), userID, productID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// Confirm moves a pending order to confirmed. Seller only.
// POST /v1/orders/:id/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.handleTransition(c, h.orderUseCase.ConfirmOrder)
}

// Ship moves a confirmed order to shipped with a tracking id. Seller only.
// POST /v1/orders/:id/ship
func (h *OrderHandler) Ship(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	order, err := h.orderUseCase.ShipOrder(c.Request.Context(), userID, orderID, req.TrackingID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// Complete moves a shipped order to completed. Buyer only.
// POST /v1/orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.handleTransition(c, h.orderUseCase.CompleteOrder)
}

// Get retrieves an order with its timeline. Only the two parties can see it.
// GET /v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	order, err := h.orderUseCase.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if order.BuyerID != userID && order.SellerID != userID {
		httputil.HandleErrorGin(c, domain.ErrOrderNotFound, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// List returns the authenticated user's orders for a role, newest first.
// GET /v1/orders?role=buyer|seller&offset=&limit= - role defaults to seller.
func (h *OrderHandler) List(c *gin.Context) {
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

	role := domain.ParseRole(c.Query("role"))

	output, err := h.orderUseCase.ListOrdersForUser(c.Request.Context(), userID, role, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderListResponse(output.Orders, output.Total, offset, limit))
}

// handleTransition is the shared body of the confirm and complete endpoints.
func (h *OrderHandler) handleTransition(
	c *gin.Context,
	transition func(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error),
) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	order, err := transition(c.Request.Context(), userID, orderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func parseOrderID(c *gin.Context) (uuid.UUID, error) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid order id format: must be a valid UUID")
	}
	return orderID, nil
}
