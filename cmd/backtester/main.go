package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"quantlab/internal/config"
	"quantlab/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand once the root has loaded it.
type app struct {
	flags  *cliFlags
	cfg    *config.Config
	logOut io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{flags: &cliFlags{}}

	root := &cobra.Command{
		Use:           "backtester",
		Short:         "Backtest, optimize and walk-forward validate trading strategies",
		Long:          `backtester simulates long-only strategies over historical candles from TimescaleDB or a CSV file, searches parameter grids and validates the chosen parameters out of sample.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.flags.configPath)
			if err != nil {
				return err
			}
			if err := a.flags.apply(cmd, cfg); err != nil {
				return err
			}
			closer, err := logger.Init(cfg.Logger())
			if err != nil {
				return err
			}
			a.cfg, a.logOut = cfg, closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logOut == nil {
				return nil
			}
			return a.logOut.Close()
		},
	}
	a.flags.register(root)

	root.AddCommand(
		newRunCmd(a),
		newGridCmd(a),
		newWalkForwardCmd(a),
		newCompareCmd(a),
		newStrategiesCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("backtester failed")
	}
}
