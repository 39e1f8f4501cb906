package engine

import (
	"context"
	"time"

	"quantlab/types"
)

type dataStore interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error)
	GetCandles(ctx context.Context, asset *types.Asset, interval types.Interval, start, end time.Time) ([]types.Candle, error)
}

// Strategy turns a candle history into one signal per candle. The signal at
// index i must only depend on candles[0..i].
type Strategy interface {
	Name() string
	Params() types.Params
	Calculate(candles []types.Candle) ([]types.Signal, error)
}

// StrategyFactory builds a fresh strategy for one parameter combination.
// It returns an error wrapping ErrInvalidParams for combinations it rejects.
type StrategyFactory func(params types.Params) (Strategy, error)

// StrategyType is a named family of strategies that can be configured by parameters.
type StrategyType interface {
	Name() string
	New(params types.Params) (Strategy, error)
}

type strategyType struct {
	name    string
	factory StrategyFactory
}

func NewStrategyType(name string, factory StrategyFactory) StrategyType {
	return strategyType{name: name, factory: factory}
}

func (s strategyType) Name() string {
	return s.name
}

func (s strategyType) New(params types.Params) (Strategy, error) {
	return s.factory(params)
}
