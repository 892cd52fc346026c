package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/marketplace/internal/app"
	"github.com/allisson/marketplace/internal/config"
	"github.com/allisson/marketplace/internal/http"
)

// RunServer starts the HTTP API server, the metrics server and the outbox
// relay with graceful shutdown support. Blocks until receiving SIGINT/SIGTERM
// or encountering a fatal error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	// Getting the HTTP server initializes all handler dependencies
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	outboxRelay, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox relay: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := metricsServer.Start(gctx); err != nil {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := outboxRelay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("outbox relay error: %w", err)
		}
		return nil
	})

	// Shutting down the servers unblocks their Start calls above.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		return shutdownServers(server, metricsServer, cfg)
	})

	return g.Wait()
}

// shutdownServers gracefully stops both servers within DBConnMaxLifetime.
func shutdownServers(server *http.Server, metricsServer *http.MetricsServer, cfg *config.Config) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer shutdownCancel()

	var shutdownErrors []error

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
	}

	return errors.Join(shutdownErrors...)
}
