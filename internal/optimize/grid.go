package optimize

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"quantlab/internal/engine"
	"quantlab/types"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Progress is told about every finished combination. *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(num int) error
}

type Config struct {
	RankBy   RankMetric
	Workers  int
	Progress Progress
}

// Optimizer runs a strategy over every combination of a parameter grid and ranks the results.
type Optimizer struct {
	engine   *engine.Engine
	rankBy   RankMetric
	score    func(types.Metrics) float64
	workers  int
	progress Progress
}

func NewOptimizer(e *engine.Engine, cfg Config) (*Optimizer, error) {
	if e == nil {
		return nil, errors.New("optimizer needs an engine")
	}
	if cfg.RankBy == "" {
		cfg.RankBy = RankSharpe
	}
	score, ok := scorers[cfg.RankBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownRankMetric, cfg.RankBy)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Optimizer{
		engine:   e,
		rankBy:   cfg.RankBy,
		score:    score,
		workers:  cfg.Workers,
		progress: cfg.Progress,
	}, nil
}

func (o *Optimizer) RankBy() RankMetric {
	return o.rankBy
}

func (o *Optimizer) Engine() *engine.Engine {
	return o.engine
}

// Combinations expands the grid in a fixed order: names sorted, the first
// name varying slowest, values in the order given.
func Combinations(grid types.ParamGrid) ([]types.Params, error) {
	if len(grid) == 0 {
		return nil, engine.ErrEmptyParamGrid
	}
	names := grid.Names()
	for _, name := range names {
		if len(grid[name]) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", engine.ErrEmptyParamGrid, name)
		}
	}

	combos := []types.Params{{}}
	for _, name := range names {
		next := make([]types.Params, 0, len(combos)*len(grid[name]))
		for _, base := range combos {
			for _, v := range grid[name] {
				p := base.Clone()
				p[name] = v
				next = append(next, p)
			}
		}
		combos = next
	}
	return combos, nil
}

// Search backtests every combination on the full series and returns the
// results best first. Combinations the factory rejects with
// engine.ErrInvalidParams are skipped; any other error aborts the search.
func (o *Optimizer) Search(ctx context.Context, series types.Series, factory engine.StrategyFactory, grid types.ParamGrid) ([]*types.BacktestResult, error) {
	combos, err := Combinations(grid)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateSeries(series); err != nil {
		return nil, err
	}

	startTime := time.Now()
	log.Info().
		Str("ticker", series.Ticker).
		Int("bars", series.Len()).
		Int("combinations", len(combos)).
		Int("workers", o.workers).
		Str("rank_by", string(o.rankBy)).
		Msg("starting grid search")

	results := make([]*types.BacktestResult, len(combos))
	var skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, params := range combos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer o.tick()

			strat, err := factory(params.Clone())
			if err != nil {
				if errors.Is(err, engine.ErrInvalidParams) {
					skipped.Add(1)
					log.Warn().Err(err).Str("params", params.Key()).Msg("skipping parameter combination")
					return nil
				}
				return fmt.Errorf("params %s: %w", params.Key(), err)
			}

			res, err := o.engine.Run(series, strat)
			if err != nil {
				return fmt.Errorf("params %s: %w", params.Key(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]scored, 0, len(results))
	for i, res := range results {
		if res == nil {
			continue
		}
		entries = append(entries, scored{index: i, score: o.score(res.Metrics), result: res})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: all %d combinations rejected", engine.ErrNoValidCombination, len(combos))
	}

	ranked := rank(entries)
	log.Info().
		Int("evaluated", len(ranked)).
		Int64("skipped", skipped.Load()).
		Str("best_params", ranked[0].Params.Key()).
		Float64("best_score", o.score(ranked[0].Metrics)).
		Dur("duration", time.Since(startTime)).
		Msg("grid search complete")

	return ranked, nil
}

func (o *Optimizer) tick() {
	if o.progress == nil {
		return
	}
	if err := o.progress.Add(1); err != nil {
		log.Debug().Err(err).Msg("progress update failed")
	}
}
