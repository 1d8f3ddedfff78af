package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fin-extract/internal/api"
	"fin-extract/internal/api/handlers"
	"fin-extract/internal/ledger"
	"fin-extract/internal/provider"
	"fin-extract/internal/service"
	"fin-extract/pkg/config"
	"fin-extract/pkg/logger"

	"go.uber.org/zap"
)

// @title fin-extract API
// @version 1.0
// @description Financial document extraction over hosted LLM providers
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting fin-extract server", zap.String("provider", cfg.Provider.Name))

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	client, err := provider.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize provider", zap.Error(err))
	}
	defer client.Close()

	store := ledger.NewStore(cfg.Ledger.Path, appLogger)

	// Services
	cleanupService := service.NewCleanupService(client, appLogger)
	extractionService := service.NewExtractionService(client, &cfg.Extract, appLogger)
	factFindService := service.NewFactFindService(client, &cfg.Extract, appLogger)

	// Handlers
	ledgerHandler := handlers.NewLedgerHandler(store, cleanupService, appLogger)
	extractHandler := handlers.NewExtractHandler(extractionService, factFindService, appLogger)

	app := api.SetupRouter(ledgerHandler, extractHandler, api.RouterConfig{
		APIToken:     cfg.Server.APIToken,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(cfg.Server.WriteTimeout); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
