package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/marketplace/internal/auth/http"
	authService "github.com/allisson/marketplace/internal/auth/service"
	chatHTTP "github.com/allisson/marketplace/internal/chat/http"
	"github.com/allisson/marketplace/internal/config"
	"github.com/allisson/marketplace/internal/metrics"
	notificationHTTP "github.com/allisson/marketplace/internal/notification/http"
	orderHTTP "github.com/allisson/marketplace/internal/order/http"
	productHTTP "github.com/allisson/marketplace/internal/product/http"
)

// Handlers bundles the feature handlers mounted on the API server.
type Handlers struct {
	Auth         *authHTTP.AuthHandler
	Product      *productHTTP.ProductHandler
	Order        *orderHTTP.OrderHandler
	Chat         *chatHTTP.ChatHandler
	Notification *notificationHTTP.NotificationHandler
}

// Server is the public API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates the API server and mounts all routes.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	jwtService *authService.JWTService,
	handlers Handlers,
	metricsProvider *metrics.Provider,
) *Server {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(requestid.New())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	registerRoutes(router, cfg, logger, jwtService, handlers)

	return &Server{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// registerRoutes mounts all API routes on the router.
func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	logger *slog.Logger,
	jwtService *authService.JWTService,
	handlers Handlers,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	authenticated := authHTTP.AuthenticationMiddleware(jwtService, logger)

	v1 := router.Group("/v1")

	// Token-issuing endpoints get per-IP rate limiting.
	auth := v1.Group("/auth")
	if cfg.RateLimitEnabled {
		auth.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)
	auth.POST("/refresh", handlers.Auth.Refresh)
	auth.POST("/logout", authenticated, handlers.Auth.Logout)
	auth.GET("/profile", authenticated, handlers.Auth.Profile)

	products := v1.Group("/products")
	products.GET("", handlers.Product.Search)
	products.GET("/mine", authenticated, handlers.Product.ListMine)
	products.GET("/:id", handlers.Product.Get)
	products.POST("", authenticated, handlers.Product.Create)
	products.PUT("/:id", authenticated, handlers.Product.Update)
	products.POST("/:id/archive", authenticated, handlers.Product.Archive)
	products.DELETE("/:id", authenticated, handlers.Product.Delete)

	orders := v1.Group("/orders", authenticated)
	orders.POST("", handlers.Order.Place)
	orders.GET("", handlers.Order.List)
	orders.GET("/:id", handlers.Order.Get)
	orders.POST("/:id/confirm", handlers.Order.Confirm)
	orders.POST("/:id/ship", handlers.Order.Ship)
	orders.POST("/:id/complete", handlers.Order.Complete)

	chat := v1.Group("/chat", authenticated)
	chat.POST("/messages", handlers.Chat.Send)
	chat.GET("/messages", handlers.Chat.History)

	notifications := v1.Group("/notifications", authenticated)
	notifications.GET("", handlers.Notification.List)
}

// Handler returns the underlying handler. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
