package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"skysolve/internal/cli"
	"skysolve/internal/config"
	"skysolve/internal/logging"
	"skysolve/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env next to the binary may carry SKYSOLVE_CONFIG and friends.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var store *storage.Store
	if cfg.Paths.DatabasePath != "" {
		store, err = storage.New(cfg.Paths.DatabasePath)
		if err != nil {
			logger.Warn("solve history disabled", "path", cfg.Paths.DatabasePath, "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRoot(cfg, logger, store)
	cmd := cli.New(root)
	return cmd.ExecuteContext(ctx)
}
