package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/engine"
	"quantlab/internal/repository"
	"quantlab/strategies"
	"quantlab/types"

	"github.com/rs/zerolog/log"
)

var errNoDataSource = errors.New("no candle source: set data.csv_path or database.url")

// loadSeries reads candles from the CSV file when one is configured and from
// the database otherwise.
func loadSeries(ctx context.Context, cfg *config.Config) (types.Series, error) {
	interval, err := types.ParseInterval(cfg.Data.Interval)
	if err != nil {
		return types.Series{}, fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
	}

	if cfg.Data.CSVPath != "" {
		series, err := repository.LoadCSVFile(cfg.Data.CSVPath, cfg.Data.Ticker, interval)
		if err != nil {
			return types.Series{}, err
		}
		if err := engine.ValidateSeries(series); err != nil {
			return types.Series{}, fmt.Errorf("%s: %w", cfg.Data.CSVPath, err)
		}
		logSeries(series, cfg.Data.CSVPath)
		return series, nil
	}

	if cfg.Database.URL == "" {
		return types.Series{}, errNoDataSource
	}
	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return types.Series{}, fmt.Errorf("connect candle store: %w", err)
	}
	defer db.Close()

	feed := engine.NewDataFeedForDays(cfg.Data.Ticker, interval, cfg.Data.Days, time.Now().UTC())
	series, err := feed.Load(ctx, db)
	if err != nil {
		return types.Series{}, err
	}
	logSeries(series, "database")
	return series, nil
}

func logSeries(series types.Series, source string) {
	log.Info().
		Str("ticker", series.Ticker).
		Str("interval", string(series.Interval)).
		Int("bars", series.Len()).
		Time("start", series.Start()).
		Time("end", series.End()).
		Str("source", source).
		Msg("candles loaded")
}

// strategySpec is a strategy name with optional parameters, written as
// "ema_cross" or "ema_cross:short_period=8,long_period=21".
type strategySpec struct {
	name   string
	params types.Params
}

func parseStrategySpec(s string) (strategySpec, error) {
	name, rest, _ := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return strategySpec{}, fmt.Errorf("%w: empty strategy in %q", engine.ErrUnknownStrategy, s)
	}
	var pairs []string
	if rest != "" {
		pairs = strings.Split(rest, ",")
	}
	params, err := config.ParseParams(pairs)
	if err != nil {
		return strategySpec{}, err
	}
	return strategySpec{name: name, params: params}, nil
}

func buildStrategy(reg *strategies.Registry, spec strategySpec) (engine.Strategy, error) {
	entry, err := reg.Lookup(spec.name)
	if err != nil {
		return nil, err
	}
	return entry.Type.New(spec.params)
}

// resolveGrid prefers the configured grid file over the strategy's built-in grid.
func resolveGrid(cfg *config.Config, entry strategies.Entry) (types.ParamGrid, error) {
	if cfg.Optimize.GridFile != "" {
		return config.LoadParamGrid(cfg.Optimize.GridFile)
	}
	if len(entry.DefaultGrid) == 0 {
		return nil, fmt.Errorf("%w: %s has no built-in grid, pass --grid", engine.ErrEmptyParamGrid, entry.Type.Name())
	}
	return entry.DefaultGrid, nil
}
