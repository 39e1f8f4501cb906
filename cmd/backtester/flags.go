package main

import (
	"github.com/spf13/cobra"

	"quantlab/internal/config"
)

type cliFlags struct {
	configPath string
	logLevel   string
	strategy   string
	params     []string
	ticker     string
	interval   string
	days       int
	csvPath    string
	outDir     string
	noChart    bool
	gridFile   string
	rankBy     string
	workers    int
	top        int
	folds      int
	trainRatio float64
	mode       string
}

func (f *cliFlags) register(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML config file. QUANTLAB_* environment variables override it.")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error.")
	pf.StringVarP(&f.strategy, "strategy", "s", "", "Strategy name, see the strategies command.")
	pf.StringArrayVarP(&f.params, "param", "p", nil, "Strategy parameter as name=value. Repeatable.")
	pf.StringVarP(&f.ticker, "ticker", "t", "", "Ticker to load from the candle store.")
	pf.StringVarP(&f.interval, "interval", "i", "", "Bar interval, e.g. 60, 240, D or 1h, 4h, 1d.")
	pf.IntVar(&f.days, "days", 0, "Number of days of history up to now.")
	pf.StringVar(&f.csvPath, "csv", "", "Read candles from this CSV file instead of the database.")
	pf.StringVarP(&f.outDir, "out", "o", "", "Directory for CSV and chart exports. Empty disables export.")
	pf.BoolVar(&f.noChart, "no-chart", false, "Skip the HTML equity chart.")
	pf.StringVarP(&f.gridFile, "grid", "g", "", "YAML parameter grid. Defaults to the strategy's built-in grid.")
	pf.StringVar(&f.rankBy, "rank-by", "", "Ranking metric for grid search.")
	pf.IntVarP(&f.workers, "workers", "w", 0, "Parallel backtests during grid search.")
	pf.IntVar(&f.top, "top", 0, "Rows to print from a ranking.")
	pf.IntVar(&f.folds, "folds", 0, "Walk-forward folds.")
	pf.Float64Var(&f.trainRatio, "train-ratio", 0, "Walk-forward train share of each fold.")
	pf.StringVar(&f.mode, "mode", "", "Walk-forward window mode: non_overlapping or rolling.")
}

// apply copies every flag the user set onto cfg and re-validates it.
func (f *cliFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("strategy") {
		cfg.Optimize.Strategy = f.strategy
	}
	if changed("ticker") {
		cfg.Data.Ticker = f.ticker
	}
	if changed("interval") {
		cfg.Data.Interval = f.interval
	}
	if changed("days") {
		cfg.Data.Days = f.days
	}
	if changed("csv") {
		cfg.Data.CSVPath = f.csvPath
	}
	if changed("out") {
		cfg.Report.OutDir = f.outDir
	}
	if changed("no-chart") {
		cfg.Report.Chart = !f.noChart
	}
	if changed("grid") {
		cfg.Optimize.GridFile = f.gridFile
	}
	if changed("rank-by") {
		cfg.Optimize.RankBy = f.rankBy
	}
	if changed("workers") {
		cfg.Optimize.Workers = f.workers
	}
	if changed("top") {
		cfg.Report.TopN = f.top
	}
	if changed("folds") {
		cfg.WalkForward.Folds = f.folds
	}
	if changed("train-ratio") {
		cfg.WalkForward.TrainRatio = f.trainRatio
	}
	if changed("mode") {
		cfg.WalkForward.Mode = f.mode
	}
	return cfg.Validate()
}
