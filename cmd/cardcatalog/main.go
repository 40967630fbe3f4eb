package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/cardcatalog/internal/app"
	"github.com/okian/cardcatalog/internal/config"
	"github.com/okian/cardcatalog/pkg/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardcatalog",
		Short:         "Prompt and answer card catalog",
		Long:          "cardcatalog serves a searchable, shuffleable catalog of prompt and answer cards grouped into sets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(), newImportCmd(), newLoadTestCmd())
	return root
}

// loadConfig layers configuration and applies the log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if keys := cfg.UnusedDBKeys(); len(keys) > 0 {
		logger.Get().Warn(ctx, "network database settings have no effect on the SQLite store", logger.Any("keys", keys))
	}
	return cfg, nil
}

func newService(cfg *config.Config) *service.Service {
	return service.New(
		service.WithLogger(logger.Get()),
		service.WithDBPath(cfg.DBPath),
		service.WithPoolSize(cfg.PoolSize),
		service.WithBusyTimeout(cfg.BusyTimeout()),
		service.WithStoreTimeout(cfg.StoreTimeout()),
	)
}
