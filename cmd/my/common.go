package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matchyard/matchyard/internal/config"
	"github.com/matchyard/matchyard/internal/db"
	"github.com/matchyard/matchyard/internal/logging"
	"github.com/matchyard/matchyard/internal/stats"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const defaultConfigPath = "matchyard.yaml"

// connectFromConfig loads the config, sets up logging and connects to the
// marketplace database.
func connectFromConfig(ctx context.Context, configPath string) (*config.Config, *gorm.DB, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.Init(cfg.Log)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	gormDB, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	return cfg, gormDB, logger, nil
}

// newStatsService builds the report service from the reporting config.
func newStatsService(cfg *config.Config, gormDB *gorm.DB, logger zerolog.Logger) *stats.Service {
	return stats.New(gormDB, logger, stats.Options{
		ActivityWindow: cfg.Reporting.ActivityWindow,
		ActivityLimit:  cfg.Reporting.ActivityLimit,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(cmd.Context())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func closeDB(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
}
