package main

import (
	"fmt"
	"os"
	"strings"

	"quantlab/internal/config"
	"quantlab/internal/engine"
	"quantlab/internal/optimize"
	"quantlab/internal/report"
	"quantlab/strategies"
	"quantlab/types"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Backtest one strategy with fixed parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParamFlags(a)
			if err != nil {
				return err
			}
			strat, err := buildStrategy(strategies.Default(), strategySpec{name: a.cfg.Optimize.Strategy, params: params})
			if err != nil {
				return err
			}
			eng, err := a.cfg.NewEngine()
			if err != nil {
				return err
			}
			series, err := loadSeries(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			res, err := eng.Run(series, strat)
			if err != nil {
				return err
			}
			report.PrintResult(cmd.OutOrStdout(), res)
			return a.export(res)
		},
	}
}

func newGridCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Search a parameter grid and rank every combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := strategies.Default().Lookup(a.cfg.Optimize.Strategy)
			if err != nil {
				return err
			}
			grid, err := resolveGrid(a.cfg, entry)
			if err != nil {
				return err
			}
			series, err := loadSeries(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			optCfg := a.cfg.OptimizerConfig()
			optCfg.Progress = report.NewProgressBar(os.Stderr, grid.Size(), "Searching "+entry.Type.Name())
			opt, err := a.newOptimizer(optCfg)
			if err != nil {
				return err
			}

			ranked, err := opt.Search(cmd.Context(), series, entry.Type.New, grid)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr)
			fmt.Fprintf(cmd.OutOrStdout(), "%d combinations ranked by %s\n", len(ranked), opt.RankBy())
			report.PrintRanking(cmd.OutOrStdout(), ranked, a.cfg.Report.TopN)
			return a.export(ranked[0])
		},
	}
}

func newWalkForwardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "walkforward",
		Aliases: []string{"wf"},
		Short:   "Re-optimize on each train window and score the winner out of sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := strategies.Default().Lookup(a.cfg.Optimize.Strategy)
			if err != nil {
				return err
			}
			grid, err := resolveGrid(a.cfg, entry)
			if err != nil {
				return err
			}
			series, err := loadSeries(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			wfCfg := a.cfg.WalkForwardConfig()
			optCfg := a.cfg.OptimizerConfig()
			optCfg.Progress = report.NewProgressBar(os.Stderr, grid.Size()*wfCfg.Folds, "Walk-forward "+entry.Type.Name())
			opt, err := a.newOptimizer(optCfg)
			if err != nil {
				return err
			}
			wf, err := optimize.NewWalkForward(opt, wfCfg)
			if err != nil {
				return err
			}

			res, err := wf.Validate(cmd.Context(), series, entry.Type.New, grid)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr)
			report.PrintWalkForward(cmd.OutOrStdout(), res)
			for _, fold := range res.Folds {
				if err := a.export(fold.Test); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare STRATEGY[:name=value,...]...",
		Short: "Backtest several strategies on the same candles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := strategies.Default()
			strats := make([]engine.Strategy, 0, len(args))
			for _, arg := range args {
				spec, err := parseStrategySpec(arg)
				if err != nil {
					return err
				}
				strat, err := buildStrategy(reg, spec)
				if err != nil {
					return err
				}
				strats = append(strats, strat)
			}
			eng, err := a.cfg.NewEngine()
			if err != nil {
				return err
			}
			series, err := loadSeries(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			results, err := eng.Compare(series, strats...)
			if err != nil {
				return err
			}
			printComparison(cmd, results)
			for _, res := range results {
				if err := a.export(res); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printComparison(cmd *cobra.Command, results []*types.BacktestResult) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Strategy", "Params", "Return", "Buy & hold", "Sharpe", "Max DD", "Trades"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, res := range results {
		m := res.Metrics
		table.Append([]string{
			res.StrategyName,
			res.Params.Key(),
			fmt.Sprintf("%.2f%%", m.TotalReturn*100),
			fmt.Sprintf("%.2f%%", res.BuyAndHoldReturn*100),
			fmt.Sprintf("%.3f", m.SharpeRatio),
			fmt.Sprintf("%.2f%%", m.MaxDrawdown*100),
			fmt.Sprintf("%d", m.TradeCount),
		})
	}
	table.Render()
}

func newStrategiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the built-in strategies and their default grids",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := strategies.Default()
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Name", "Description", "Default grid"})
			table.SetAutoFormatHeaders(false)
			for _, name := range reg.Names() {
				entry, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				table.Append([]string{name, entry.Description, gridSummary(entry.DefaultGrid)})
			}
			table.Render()
			return nil
		},
	}
}

func gridSummary(grid types.ParamGrid) string {
	parts := make([]string, 0, len(grid))
	for _, name := range grid.Names() {
		parts = append(parts, fmt.Sprintf("%s=%v", name, grid[name]))
	}
	return strings.Join(parts, " ")
}

func parseParamFlags(a *app) (types.Params, error) {
	return config.ParseParams(a.flags.params)
}

func (a *app) newOptimizer(cfg optimize.Config) (*optimize.Optimizer, error) {
	eng, err := a.cfg.NewEngine()
	if err != nil {
		return nil, err
	}
	return optimize.NewOptimizer(eng, cfg)
}

// export writes the result files when an output directory is configured.
func (a *app) export(res *types.BacktestResult) error {
	if a.cfg.Report.OutDir == "" || res == nil {
		return nil
	}
	files, err := report.WriteResult(a.cfg.Report.OutDir, res, a.cfg.Report.Chart)
	if err != nil {
		return err
	}
	log.Info().Strs("files", files).Str("strategy", res.StrategyName).Msg("result exported")
	return nil
}
