package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"github.com/tendant/vault/pkg/vault/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := httplog.NewLogger("vault", httplog.Options{
		JSON:            cfg.Environment == "production",
		LogLevel:        slog.LevelInfo,
		Concise:         true,
		RequestHeaders:  false,
		QuietDownRoutes: []string{"/api/health"},
		QuietDownPeriod: 10 * time.Second,
	})
	slog.SetDefault(logger.Logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig, logger *httplog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cfg.Build(ctx, logger.Logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Media != nil {
		if err := app.Media.EnsureReady(ctx); err != nil {
			return fmt.Errorf("storage not ready: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           newRouter(app, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Vault server starting", "port", cfg.Port, "env", cfg.Environment,
			"database", cfg.DatabaseType, "storage", app.HealthInfo().Storage, "drafts", app.HealthInfo().Drafts)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}
