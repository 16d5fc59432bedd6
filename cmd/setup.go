package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termai/termai/internal/config"
	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/persistence/execstore"
	"github.com/termai/termai/internal/persistence/flowstore"
)

// setting is the per-invocation wiring: resolved config plus a context
// carrying the logger.
type setting struct {
	cfg *config.Config
	ctx context.Context
}

// setup loads configuration and builds the logging context shared by
// every command.
func setup(cmd *cobra.Command) (*setting, error) {
	var loaderOpts []config.ConfigLoaderOption
	if cfgFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(cfgFile))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return nil, err
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Global.Debug = true
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.Global.Quiet = true
	}

	var logOpts []logger.Option
	if cfg.Global.Debug {
		logOpts = append(logOpts, logger.WithDebug())
	}
	if cfg.Global.Quiet {
		logOpts = append(logOpts, logger.WithQuiet())
	}
	if cfg.Global.LogFormat != "" {
		logOpts = append(logOpts, logger.WithFormat(cfg.Global.LogFormat))
	}

	ctx := logger.WithLogger(cmd.Context(), logger.NewLogger(logOpts...))
	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w)
	}
	return &setting{cfg: cfg, ctx: ctx}, nil
}

func (s *setting) openFlowStore() (*flowstore.Store, error) {
	store, err := flowstore.New(s.cfg.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow store: %w", err)
	}
	return store, nil
}

func (s *setting) openExecStore() (*execstore.Store, error) {
	store, err := execstore.New(s.cfg.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open execution store: %w", err)
	}
	return store, nil
}
