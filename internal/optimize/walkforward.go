package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"

	"quantlab/internal/engine"
	"quantlab/types"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
)

type WindowMode string

const (
	// WindowNonOverlapping cuts the series into equal segments, each split into train and test.
	WindowNonOverlapping WindowMode = "non_overlapping"
	// WindowRolling slides a fixed train+test window forward by the test length.
	WindowRolling WindowMode = "rolling"
)

const (
	DefaultTrainRatio = 0.5
	DefaultFolds      = 1
	DefaultMinBars    = 2
)

type WalkForwardConfig struct {
	TrainRatio float64
	Folds      int
	Mode       WindowMode
	// MinBars is the fewest candles a train or test range may hold.
	MinBars int
}

func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{
		TrainRatio: DefaultTrainRatio,
		Folds:      DefaultFolds,
		Mode:       WindowNonOverlapping,
		MinBars:    DefaultMinBars,
	}
}

func (c WalkForwardConfig) withDefaults() WalkForwardConfig {
	if c.Mode == "" {
		c.Mode = WindowNonOverlapping
	}
	if c.MinBars <= 0 {
		c.MinBars = DefaultMinBars
	}
	return c
}

func (c WalkForwardConfig) validate() error {
	if math.IsNaN(c.TrainRatio) || c.TrainRatio <= 0 || c.TrainRatio >= 1 {
		return fmt.Errorf("%w: got %v", engine.ErrInvalidTrainRatio, c.TrainRatio)
	}
	if c.Folds < 1 {
		return fmt.Errorf("%w: got %d", engine.ErrInvalidFolds, c.Folds)
	}
	switch c.Mode {
	case WindowNonOverlapping, WindowRolling:
	default:
		return fmt.Errorf("%w: %q", engine.ErrUnknownWindowMode, c.Mode)
	}
	return nil
}

// BuildFolds splits n bars into train/test index ranges. It fails before any
// simulation if a range is too short or a test range could see its own train data.
func BuildFolds(n int, cfg WalkForwardConfig) ([]types.Fold, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var folds []types.Fold
	switch cfg.Mode {
	case WindowRolling:
		folds = rollingFolds(n, cfg)
	default:
		folds = segmentFolds(n, cfg)
	}

	for _, f := range folds {
		if f.Train.Len() < cfg.MinBars || f.Test.Len() < cfg.MinBars {
			return nil, fmt.Errorf("%w: fold %d has %d train and %d test bars, need %d each (series has %d)",
				engine.ErrNotEnoughCandles, f.Index, f.Train.Len(), f.Test.Len(), cfg.MinBars, n)
		}
	}
	if err := checkLeaks(folds); err != nil {
		return nil, err
	}
	return folds, nil
}

func segmentFolds(n int, cfg WalkForwardConfig) []types.Fold {
	folds := make([]types.Fold, cfg.Folds)
	for k := range folds {
		start := k * n / cfg.Folds
		end := (k + 1) * n / cfg.Folds
		split := start + int(float64(end-start)*cfg.TrainRatio)
		folds[k] = types.Fold{
			Index: k,
			Train: types.Range{Start: start, End: split},
			Test:  types.Range{Start: split, End: end},
		}
	}
	return folds
}

// rollingFolds anchors the last window at the end of the series so the test
// ranges are contiguous and cover the tail.
func rollingFolds(n int, cfg WalkForwardConfig) []types.Fold {
	window := int(float64(n) / (1 + float64(cfg.Folds-1)*(1-cfg.TrainRatio)))
	trainLen, testLen := 0, 0
	for ; window > 0; window-- {
		trainLen = int(float64(window) * cfg.TrainRatio)
		testLen = window - trainLen
		if window+(cfg.Folds-1)*testLen <= n {
			break
		}
	}

	folds := make([]types.Fold, cfg.Folds)
	for k := range folds {
		start := n - window - (cfg.Folds-1-k)*testLen
		folds[k] = types.Fold{
			Index: k,
			Train: types.Range{Start: start, End: start + trainLen},
			Test:  types.Range{Start: start + trainLen, End: start + window},
		}
	}
	return folds
}

func checkLeaks(folds []types.Fold) error {
	for i, f := range folds {
		if f.Train.Start < 0 || f.Train.End > f.Test.Start || f.Train.Overlaps(f.Test) {
			return fmt.Errorf("%w: fold %d train %v test %v", engine.ErrLookAheadLeak, f.Index, f.Train, f.Test)
		}
		if i+1 < len(folds) && f.Test.End > folds[i+1].Train.End {
			return fmt.Errorf("%w: fold %d test ends after fold %d train", engine.ErrLookAheadLeak, f.Index, folds[i+1].Index)
		}
	}
	return nil
}

// WalkForward re-optimizes on every train range and scores the chosen
// parameters on the following test range only.
type WalkForward struct {
	optimizer *Optimizer
	cfg       WalkForwardConfig
}

func NewWalkForward(optimizer *Optimizer, cfg WalkForwardConfig) (*WalkForward, error) {
	if optimizer == nil {
		return nil, errors.New("walk-forward needs an optimizer")
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &WalkForward{optimizer: optimizer, cfg: cfg}, nil
}

func (w *WalkForward) Validate(ctx context.Context, series types.Series, factory engine.StrategyFactory, grid types.ParamGrid) (*types.WalkForwardResult, error) {
	if err := engine.ValidateSeries(series); err != nil {
		return nil, err
	}
	if _, err := Combinations(grid); err != nil {
		return nil, err
	}
	folds, err := BuildFolds(series.Len(), w.cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("ticker", series.Ticker).
		Int("bars", series.Len()).
		Int("folds", len(folds)).
		Str("mode", string(w.cfg.Mode)).
		Float64("train_ratio", w.cfg.TrainRatio).
		Msg("starting walk-forward validation")

	results := make([]types.FoldResult, len(folds))
	for i, fold := range folds {
		res, err := w.runFold(ctx, series, fold, factory, grid)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Index, err)
		}
		results[i] = res
	}

	out := &types.WalkForwardResult{
		StrategyName: results[0].Test.StrategyName,
		Ticker:       series.Ticker,
		Interval:     series.Interval,
		Mode:         string(w.cfg.Mode),
		TrainRatio:   w.cfg.TrainRatio,
		Folds:        results,
		OutOfSample:  AggregateFolds(results),
	}

	log.Info().
		Str("strategy", out.StrategyName).
		Float64("oos_sharpe", out.OutOfSample.SharpeRatio).
		Float64("oos_total_return", out.OutOfSample.TotalReturn).
		Int("oos_trades", out.OutOfSample.TotalTrades).
		Msg("walk-forward validation complete")

	return out, nil
}

func (w *WalkForward) runFold(ctx context.Context, series types.Series, fold types.Fold, factory engine.StrategyFactory, grid types.ParamGrid) (types.FoldResult, error) {
	train := series.Slice(fold.Train)
	ranked, err := w.optimizer.Search(ctx, train, factory, grid)
	if err != nil {
		return types.FoldResult{}, fmt.Errorf("optimize train range: %w", err)
	}
	best := ranked[0]

	strat, err := factory(best.Params.Clone())
	if err != nil {
		return types.FoldResult{}, fmt.Errorf("rebuild best params %s: %w", best.Params.Key(), err)
	}
	test := series.Slice(fold.Test)
	testResult, err := w.optimizer.engine.Run(test, strat)
	if err != nil {
		return types.FoldResult{}, fmt.Errorf("test range: %w", err)
	}

	log.Debug().
		Int("fold", fold.Index).
		Str("best_params", best.Params.Key()).
		Float64("train_sharpe", best.Metrics.SharpeRatio).
		Float64("test_sharpe", testResult.Metrics.SharpeRatio).
		Msg("fold finished")

	return types.FoldResult{
		Fold:         fold,
		TrainStart:   train.Start(),
		TrainEnd:     train.End(),
		TestStart:    test.Start(),
		TestEnd:      test.End(),
		BestParams:   best.Params.Clone(),
		TrainMetrics: best.Metrics,
		Candidates:   len(ranked),
		Test:         testResult,
	}, nil
}

// AggregateFolds averages each out-of-sample metric across folds.
func AggregateFolds(folds []types.FoldResult) types.AggregateMetrics {
	agg := types.AggregateMetrics{Folds: len(folds)}
	if len(folds) == 0 {
		return agg
	}

	column := func(get func(types.Metrics) float64) float64 {
		data := make(stats.Float64Data, len(folds))
		for i, f := range folds {
			data[i] = get(f.Test.Metrics)
		}
		mean, err := stats.Mean(data)
		if err != nil {
			return 0
		}
		return mean
	}

	for _, f := range folds {
		agg.TotalTrades += f.Test.Metrics.TradeCount
	}
	agg.TotalReturn = column(func(m types.Metrics) float64 { return m.TotalReturn })
	agg.AnnualizedReturn = column(func(m types.Metrics) float64 { return m.AnnualizedReturn })
	agg.SharpeRatio = column(func(m types.Metrics) float64 { return m.SharpeRatio })
	agg.MaxDrawdown = column(func(m types.Metrics) float64 { return m.MaxDrawdown })
	agg.WinRate = column(func(m types.Metrics) float64 { return m.WinRate })
	agg.TradeCount = column(func(m types.Metrics) float64 { return float64(m.TradeCount) })
	agg.ProfitFactor = column(func(m types.Metrics) float64 { return m.ProfitFactor })
	agg.AvgTradeReturn = column(func(m types.Metrics) float64 { return m.AvgTradeReturn })
	agg.MaxConsecutiveLosses = column(func(m types.Metrics) float64 { return float64(m.MaxConsecutiveLosses) })
	agg.TotalFees = column(func(m types.Metrics) float64 { return m.TotalFees })
	agg.Exposure = column(func(m types.Metrics) float64 { return m.Exposure })
	return agg
}

