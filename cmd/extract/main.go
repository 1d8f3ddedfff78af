package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/internal/service"
	"fin-extract/pkg/config"
	"fin-extract/pkg/logger"

	"go.uber.org/zap"
)

const usage = `Usage:
  extract documents -src DIR [-out DIR] [-prompt FILE]
  extract category -name CATEGORY|all [-dir DIR | -doc FILE] [-prompt FILE] [-xlsx]

Categories: basic_fact, asset, liability, income, expense`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

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
	appLogger := logger.Named("extract")

	switch os.Args[1] {
	case "documents", "category":
	default:
		fmt.Println(usage)
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := provider.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize provider", zap.Error(err))
	}
	defer client.Close()

	if os.Args[1] == "documents" {
		err = runDocuments(ctx, client, cfg, appLogger, os.Args[2:])
	} else {
		err = runCategory(ctx, client, cfg, appLogger, os.Args[2:])
	}
	if err != nil {
		appLogger.Fatal("Extraction failed", zap.Error(err))
	}
}

func runDocuments(ctx context.Context, client provider.Client, cfg *config.Config, appLogger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("documents", flag.ExitOnError)
	src := fs.String("src", "", "directory with the documents")
	out := fs.String("out", cfg.Extract.OutputDir, "directory for markdown and metadata files")
	promptFile := fs.String("prompt", "", "replace the built-in extraction prompt")
	_ = fs.Parse(args)
	if *src == "" {
		fs.Usage()
		os.Exit(2)
	}

	svc := service.NewExtractionService(client, &cfg.Extract, appLogger)
	prompt, err := service.LoadPrompt(*promptFile, svc.SystemPrompt)
	if err != nil {
		return err
	}
	svc.SystemPrompt = prompt

	report, err := svc.ExtractDirectory(ctx, *src, *out)
	if err != nil {
		return err
	}

	failed := 0
	for _, d := range report.Documents {
		status := "ok"
		if d.Metadata.Error {
			status = "error: " + d.Metadata.ErrorReason
			failed++
		}
		fmt.Printf("%s  %.1fs  %s\n", d.Metadata.Filename, d.Metadata.DurationSeconds, status)
	}
	for _, f := range report.Failed {
		fmt.Printf("%s  failed: %v\n", f.Path, f.Err)
	}
	fmt.Printf("\n%d documents, %d with errors, %d skipped, output in %s\n",
		len(report.Documents), failed+len(report.Failed), len(report.Skipped), *out)
	return nil
}

func runCategory(ctx context.Context, client provider.Client, cfg *config.Config, appLogger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("category", flag.ExitOnError)
	name := fs.String("name", "", "category to extract, or all")
	dir := fs.String("dir", cfg.Extract.OutputDir, "directory with extracted markdown")
	doc := fs.String("doc", "", "extract from this single document instead of -dir")
	promptFile := fs.String("prompt", "", "replace the built-in system prompt")
	xlsx := fs.Bool("xlsx", false, "also write <category>.xlsx next to the JSON result")
	_ = fs.Parse(args)

	var categories []models.Category
	if *name == "all" {
		categories = models.Categories
	} else {
		c, err := models.ParseCategory(*name)
		if err != nil {
			fs.Usage()
			return err
		}
		categories = []models.Category{c}
	}
	if *promptFile != "" && len(categories) > 1 {
		return fmt.Errorf("-prompt needs a single category")
	}

	svc := service.NewFactFindService(client, &cfg.Extract, appLogger)
	if *promptFile != "" {
		prompt, err := service.LoadPrompt(*promptFile, "")
		if err != nil {
			return err
		}
		svc.SetSystemPrompt(categories[0], prompt)
	}

	for _, c := range categories {
		var (
			result any
			path   string
			err    error
		)
		if *doc != "" {
			result, err = svc.ExtractCategoryFromFile(ctx, c, *doc)
			if err == nil {
				path, err = svc.SaveResult(c, result)
			}
		} else {
			result, path, err = svc.RunCategory(ctx, c, *dir)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", c, path)

		if *xlsx {
			sheet, err := service.SaveCategoryXLSX(cfg.Extract.ResultDir, c, result)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", c, sheet)
		}
	}
	return nil
}
