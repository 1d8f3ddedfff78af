package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"fin-extract/internal/ledger"
	"fin-extract/internal/provider"
	"fin-extract/internal/service"
	"fin-extract/pkg/config"
	"fin-extract/pkg/logger"

	"go.uber.org/zap"
)

const defaultPromptFile = "sample_prompt.txt"

func main() {
	dir := flag.String("dir", ".", "directory to upload")
	promptFile := flag.String("prompt-file", defaultPromptFile, "file with the analysis prompt")
	force := flag.Bool("force", false, "upload even when the ledger already has records")
	flag.Parse()

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
	appLogger := logger.Named("filemanager")

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	prompt, err := service.LoadPrompt(*promptFile, service.DefaultAnalysisPrompt)
	if errors.Is(err, fs.ErrNotExist) && *promptFile == defaultPromptFile {
		appLogger.Warn("Prompt file not found, using the built-in prompt", zap.String("path", *promptFile))
		prompt = service.DefaultAnalysisPrompt
	} else if err != nil {
		appLogger.Fatal("Failed to read prompt", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := provider.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize provider", zap.Error(err))
	}
	defer client.Close()

	store := ledger.NewStore(cfg.Ledger.Path, appLogger)
	svc := service.NewFileManagerService(client, store, &cfg.Upload, appLogger)

	res, err := svc.Run(ctx, service.RunOptions{
		Directory: *dir,
		Prompt:    prompt,
		Force:     *force,
	})
	if res.Report != nil {
		fmt.Printf("Uploaded %d files from %s\n", len(res.Report.Uploaded), res.Report.Directory)
		for _, f := range res.Report.Failed {
			fmt.Printf("  failed: %s: %v\n", f.Path, f.Err)
		}
	}
	if err != nil {
		appLogger.Fatal("File manager failed", zap.Error(err))
	}

	fmt.Println("\n" + res.Answer)
}
