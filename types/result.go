package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestResult is the immutable output of one simulation run.
type BacktestResult struct {
	ID               string          `json:"id"`
	StrategyName     string          `json:"strategyName"`
	Params           Params          `json:"params"`
	Ticker           string          `json:"ticker"`
	Interval         Interval        `json:"interval"`
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	InitialCash      decimal.Decimal `json:"initialCash"`
	EquityCurve      []EquityPoint   `json:"equityCurve"`
	Trades           []Trade         `json:"trades"`
	Orders           []Order         `json:"orders"`
	OpenPosition     *Position       `json:"openPosition,omitempty"`
	Metrics          Metrics         `json:"metrics"`
	BuyAndHoldReturn float64         `json:"buyAndHoldReturn"`
}

func (r *BacktestResult) FinalEquity() decimal.Decimal {
	if len(r.EquityCurve) == 0 {
		return r.InitialCash
	}
	return r.EquityCurve[len(r.EquityCurve)-1].TotalEquity
}

// Fold is one walk-forward split over series indices.
type Fold struct {
	Index int   `json:"index"`
	Train Range `json:"train"`
	Test  Range `json:"test"`
}

// FoldResult is the in-sample choice and out-of-sample evaluation of one fold.
type FoldResult struct {
	Fold         Fold            `json:"fold"`
	TrainStart   time.Time       `json:"trainStart"`
	TrainEnd     time.Time       `json:"trainEnd"`
	TestStart    time.Time       `json:"testStart"`
	TestEnd      time.Time       `json:"testEnd"`
	BestParams   Params          `json:"bestParams"`
	TrainMetrics Metrics         `json:"trainMetrics"`
	Candidates   int             `json:"candidates"`
	Test         *BacktestResult `json:"test"`
}

// WalkForwardResult aggregates out-of-sample performance across folds.
type WalkForwardResult struct {
	StrategyName string           `json:"strategyName"`
	Ticker       string           `json:"ticker"`
	Interval     Interval         `json:"interval"`
	Mode         string           `json:"mode"`
	TrainRatio   float64          `json:"trainRatio"`
	Folds        []FoldResult     `json:"folds"`
	OutOfSample  AggregateMetrics `json:"outOfSample"`
}
