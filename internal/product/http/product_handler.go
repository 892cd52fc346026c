// Package http provides HTTP handlers for product operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/marketplace/internal/auth/http"
	apperrors "github.com/allisson/marketplace/internal/errors"
	"github.com/allisson/marketplace/internal/httputil"
	"github.com/allisson/marketplace/internal/product/domain"
	"github.com/allisson/marketplace/internal/product/http/dto"
	"github.com/allisson/marketplace/internal/product/usecase"
	customValidation "github.com/allisson/marketplace/internal/validation"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productUseCase usecase.UseCase
	logger         *slog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productUseCase usecase.UseCase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
		logger:         logger,
	}
}

// Create lists a new product for the authenticated seller.
// POST /v1/products - Returns 201 Created.
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	product, err := h.productUseCase.Create(c.Request.Context(), userID, dto.ToCreateProductInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

// Get retrieves a product by id.
// GET /v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := parseProductID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	product, err := h.productUseCase.GetByID(c.Request.Context(), productID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// Update modifies a product owned by the authenticated seller.
// PUT /v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	product, err := h.productUseCase.Update(c.Request.Context(), userID, productID, dto.ToUpdateProductInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// Archive hides a product from search and ordering.
// POST /v1/products/:id/archive
func (h *ProductHandler) Archive(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	product, err := h.productUseCase.Archive(c.Request.Context(), userID, productID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// Delete removes a product owned by the authenticated seller.
// DELETE /v1/products/:id - Returns 204 No Content.
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.productUseCase.Delete(c.Request.Context(), userID, productID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// Search returns a page of products matching query filters.
// GET /v1/products?q=&seller_id=&min_price=&max_price=&offset=&limit=
func (h *ProductHandler) Search(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.SearchFilter{Query: c.Query("q")}

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		sellerID, err := uuid.Parse(sellerIDStr)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid seller_id format: must be a valid UUID"), h.logger)
			return
		}
		filter.SellerID = sellerID
	}

	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		minPrice, err := strconv.ParseFloat(minPriceStr, 64)
		if err != nil || minPrice < 0 {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid min_price: must be a non-negative number"), h.logger)
			return
		}
		filter.MinPrice = minPrice
	}

	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		maxPrice, err := strconv.ParseFloat(maxPriceStr, 64)
		if err != nil || maxPrice < 0 {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid max_price: must be a non-negative number"), h.logger)
			return
		}
		filter.MaxPrice = maxPrice
	}

	output, err := h.productUseCase.Search(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductListResponse(output.Products, output.Total, offset, limit))
}

// ListMine returns the authenticated seller's own products.
// GET /v1/products/mine
func (h *ProductHandler) ListMine(c *gin.Context) {
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

	products, err := h.productUseCase.ListMine(c.Request.Context(), userID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductListResponse(products, len(products), offset, limit))
}

func parseProductID(c *gin.Context) (uuid.UUID, error) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid product id format: must be a valid UUID")
	}
	return productID, nil
}
