package app

import (
	"fmt"

	"github.com/allisson/marketplace/internal/http"

	authHTTP "github.com/allisson/marketplace/internal/auth/http"
	chatHTTP "github.com/allisson/marketplace/internal/chat/http"
	notificationHTTP "github.com/allisson/marketplace/internal/notification/http"
	orderHTTP "github.com/allisson/marketplace/internal/order/http"
	productHTTP "github.com/allisson/marketplace/internal/product/http"
)

// initHTTPServer wires all HTTP handlers and builds the API server.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	authUseCase, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}

	productUseCase, err := c.ProductUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get product use case for http server: %w", err)
	}

	orderUseCase, err := c.OrderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get order use case for http server: %w", err)
	}

	chatUseCase, err := c.ChatUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat use case for http server: %w", err)
	}

	notificationUseCase, err := c.NotificationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification use case for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	handlers := http.Handlers{
		Auth:         authHTTP.NewAuthHandler(authUseCase, logger),
		Product:      productHTTP.NewProductHandler(productUseCase, logger),
		Order:        orderHTTP.NewOrderHandler(orderUseCase, logger),
		Chat:         chatHTTP.NewChatHandler(chatUseCase, logger),
		Notification: notificationHTTP.NewNotificationHandler(notificationUseCase, logger),
	}

	return http.NewServer(c.config, logger, c.JWTService(), handlers, metricsProvider), nil
}
