package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"clubportal/internal/config"
	"clubportal/internal/di"
	"clubportal/internal/shared/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	format := cfg.Logging.Format
	if cfg.IsProduction() {
		format = "json"
	}
	appLogger := logger.NewLoggerWithBackend(cfg.Logging.Backend, cfg.Logging.Level, format)
	appLogger.Infof("Starting clubportal edge (%s)", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize container: %v", err)
	}

	app := container.NewApp()
	serverAddr := cfg.Server.Addr()
	appLogger.Infof("All modules initialized. Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed to start: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancelShutdown()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}

	if err := container.Close(context.Background()); err != nil {
		appLogger.Errorf("Failed to close container: %v", err)
		os.Exit(1)
	}
	fmt.Println("clubportal edge stopped")
}
