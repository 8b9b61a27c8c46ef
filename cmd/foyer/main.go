package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/foyer/internal/config"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/logging"
	"github.com/dukerupert/foyer/internal/store"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "foyer",
		Short:         "Household chore and reward ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(hashCodeCmd())
	rootCmd.AddCommand(vapidKeysCmd())
	rootCmd.AddCommand(rankingCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime is what every command needing the ledger opens.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	gw     store.Gateway
}

func openRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	gw, err := store.Open(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, gw: gw}, nil
}

func (rt *runtime) close() {
	if err := rt.gw.Close(); err != nil {
		rt.logger.Warn("close storage", "error", err)
	}
}

func (rt *runtime) engine(ctx context.Context, extra ...engine.Option) (*engine.Engine, error) {
	loc, err := rt.cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := rt.cfg.EnginePolicy()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLocation(loc),
		engine.WithPolicy(policy),
		engine.WithLogger(rt.logger),
	}
	return engine.New(ctx, rt.gw, append(opts, extra...)...), nil
}
