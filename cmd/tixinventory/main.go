package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/kirinyoku/tix-inventory/docs"
	"github.com/kirinyoku/tix-inventory/internal/app"
	"github.com/kirinyoku/tix-inventory/internal/config"
	"github.com/spf13/pflag"
)

// @title Tix Inventory API
// @version 1.0
// @description Ticket inventory ledger: availability, reservations and ticket types.
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFiles    []string
		logLevel    string
		migrateOnly bool
	)

	flagSet := pflag.NewFlagSet("tixinventory", pflag.ContinueOnError)
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "env file to load before reading the environment (repeatable, default .env)")
	flagSet.StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "debug, info, warn or error (default info, env LOG_LEVEL)")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "apply database migrations and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelInfo
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := config.New(envFiles...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	if migrateOnly {
		return app.Migrate(ctx, cfg, logger)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application finished with error", "error", err)
		return err
	}

	return nil
}
