package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"palletpack/internal/config"
	"palletpack/internal/console"
	"palletpack/internal/integrations/extopt"
	"palletpack/internal/logging"
	"palletpack/internal/opt"
	"palletpack/internal/store"
)

type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "palletpack",
		Short:         "Load the most profitable pallets into a truck",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, solver, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return console.New(cmd.InOrStdin(), cmd.OutOrStdout(), st, solver, a.log).Run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a palletpack YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(newSolveCmd(a), newDatasetsCmd(a), newVersionCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// open builds the dataset store and a solver with the configured external
// optimizer. Size limits apply to the HTTP API only.
func (a *app) open(ctx context.Context) (store.Store, *opt.Solver, func(), error) {
	st, err := store.Open(ctx, a.cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if c, ok := st.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
	ext, err := extopt.FromConfig(a.cfg.Optimizer, a.log.Named("extopt"))
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("external optimizer: %w", err)
	}
	return st, opt.NewSolver(ext, a.log.Named("solver")), closeFn, nil
}
