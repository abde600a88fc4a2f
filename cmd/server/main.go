package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tumorboard-evidence-service/internal/api"
	"github.com/tumorboard-evidence-service/internal/config"
	"github.com/tumorboard-evidence-service/internal/logging"
	"github.com/tumorboard-evidence-service/pkg/myvariant"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)
	logger.Infof("Starting evidence service on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Create MyVariant client and server
	client := myvariant.NewClient(cfg.ExternalAPI.MyVariant, logger)
	defer client.Close()

	server := api.NewServer(cfg, client, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}
