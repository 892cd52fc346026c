// Package app provides the dependency injection container assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/marketplace/internal/cache"
	"github.com/allisson/marketplace/internal/config"
	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/http"
	"github.com/allisson/marketplace/internal/messaging"
	"github.com/allisson/marketplace/internal/metrics"

	authService "github.com/allisson/marketplace/internal/auth/service"
	authUsecase "github.com/allisson/marketplace/internal/auth/usecase"
	chatUsecase "github.com/allisson/marketplace/internal/chat/usecase"
	notificationConsumer "github.com/allisson/marketplace/internal/notification/consumer"
	notificationUsecase "github.com/allisson/marketplace/internal/notification/usecase"
	orderUsecase "github.com/allisson/marketplace/internal/order/usecase"
	outboxUsecase "github.com/allisson/marketplace/internal/outbox/usecase"
	productUsecase "github.com/allisson/marketplace/internal/product/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	cache           *cache.Cache
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	publisher       messaging.Publisher

	// Managers
	txManager database.TxManager

	// Auth
	jwtService   *authService.JWTService
	refreshStore *authService.RefreshTokenStore

	// Repositories
	userRepo         authUsecase.UserRepository
	productRepo      productUsecase.Repository
	orderRepo        orderUsecase.OrderRepository
	outboxRepo       outboxUsecase.OutboxEventRepository
	notificationRepo notificationUsecase.NotificationRepository
	chatRepo         chatUsecase.ChatRepository

	// Use Cases
	authUseCase         authUsecase.UseCase
	productUseCase      productUsecase.UseCase
	orderUseCase        orderUsecase.UseCase
	outboxUseCase       outboxUsecase.UseCase
	notificationUseCase notificationUsecase.UseCase
	chatUseCase         chatUsecase.UseCase

	// Servers and Workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	consumer      *notificationConsumer.OrderEventsConsumer

	// Initialization flags and mutex for thread-safety
	mu                       sync.Mutex
	loggerInit               sync.Once
	dbInit                   sync.Once
	cacheInit                sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	publisherInit            sync.Once
	txManagerInit            sync.Once
	jwtServiceInit           sync.Once
	refreshStoreInit         sync.Once
	userRepoInit             sync.Once
	productRepoInit          sync.Once
	orderRepoInit            sync.Once
	outboxRepoInit           sync.Once
	notificationRepoInit     sync.Once
	chatRepoInit             sync.Once
	authUseCaseInit          sync.Once
	productUseCaseInit       sync.Once
	orderUseCaseInit         sync.Once
	outboxUseCaseInit        sync.Once
	notificationUseCaseInit  sync.Once
	chatUseCaseInit          sync.Once
	httpServerInit           sync.Once
	metricsServerInit        sync.Once
	consumerInit             sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Cache returns the redis-backed cache.
func (c *Container) Cache() *cache.Cache {
	c.cacheInit.Do(func() {
		c.cache = cache.New(c.config)
	})
	return c.cache
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = bm
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Publisher returns the order events publisher.
// Falls back to a no-op publisher when no kafka brokers are configured.
func (c *Container) Publisher() messaging.Publisher {
	c.publisherInit.Do(func() {
		if len(c.config.KafkaBrokerList()) == 0 {
			c.Logger().Warn("no kafka brokers configured, order events will be discarded")
			c.publisher = messaging.NoopPublisher{}
			return
		}
		c.publisher = messaging.NewKafkaPublisher(c.config, c.Logger())
	})
	return c.publisher
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.consumer != nil {
		if err := c.consumer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("consumer close: %w", err))
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("publisher close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured JSON logger based on the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
