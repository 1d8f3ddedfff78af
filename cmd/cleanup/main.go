package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fin-extract/internal/cli"
	"fin-extract/internal/ledger"
	"fin-extract/internal/provider"
	"fin-extract/internal/service"
	"fin-extract/pkg/config"
	"fin-extract/pkg/logger"

	"go.uber.org/zap"
)

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
	appLogger := logger.Named("cleanup")

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}
	if !cli.IsInteractive(os.Stdin) {
		appLogger.Warn("Standard input is not a terminal, reading menu choices from it")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := provider.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize provider", zap.Error(err))
	}
	defer client.Close()

	store := ledger.NewStore(cfg.Ledger.Path, appLogger)
	app := cli.NewCleanupApp(service.NewCleanupService(client, appLogger), store, os.Stdin, os.Stdout, appLogger)
	app.Run(ctx)
}
