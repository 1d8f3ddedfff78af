package main

import (
	"flag"
	"fmt"
	"os"

	"fin-extract/internal/service"
	"fin-extract/pkg/config"
	"fin-extract/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	src := flag.String("src", "", "directory tree to flatten")
	dst := flag.String("dst", "", "output directory")
	numbered := flag.Bool("numbered", false, "prefix outputs with their position (001_name)")
	count := flag.Bool("count", false, "only print the file count of each child folder of -src")
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
	appLogger := logger.Named("flatten")

	if *src == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *count {
		counts, err := service.CountFiles(*src)
		if err != nil {
			appLogger.Fatal("Count failed", zap.Error(err))
		}
		total := 0
		for _, c := range counts {
			fmt.Printf("%s: %d\n", c.Folder, c.Files)
			total += c.Files
		}
		fmt.Printf("total: %d\n", total)
		return
	}

	if *dst == "" {
		flag.Usage()
		os.Exit(2)
	}

	report, err := service.Flatten(*src, *dst, service.FlattenOptions{Numbered: *numbered}, appLogger)
	if err != nil {
		appLogger.Fatal("Flatten failed", zap.Error(err))
	}
	fmt.Printf("Copied %d files into %s\n", len(report.Copied), *dst)
	for _, f := range report.Failed {
		fmt.Printf("  failed: %s: %v\n", f.Path, f.Err)
	}
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
