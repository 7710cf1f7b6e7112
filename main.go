package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bravo6co-debug/ai-riview/config"
	"github.com/bravo6co-debug/ai-riview/internal/bootstrap"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "ai-review",
		Console: cfg.IsDevelopment(),
	})
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.NewAPI(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}

	// Graceful shutdown with timeout
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down API server (timeout: %v)...", cfg.ShutdownTimeout())
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout()); err != nil {
			logger.Error("Error shutting down: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		cleanup()
		logger.Fatal("Failed to start server: %v", err)
	}

	// pending cache writes are flushed before the stores close
	cleanup()
	logger.Info("API server shut down gracefully")
}
