package engine

import (
	"time"

	"quantlab/types"

	"github.com/shopspring/decimal"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// mockCandles builds daily candles whose open, high, low and close all equal the given price.
func mockCandles(closes ...float64) []types.Candle {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		price := decimal.NewFromFloat(c)
		candles[i] = types.Candle{
			Ticker:    "BTC",
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    decimal.NewFromInt(1),
			Interval:  types.Day,
			Timestamp: testStart.AddDate(0, 0, i),
		}
	}
	return candles
}

func mockSeries(closes ...float64) types.Series {
	return types.NewSeries("BTC", types.Day, mockCandles(closes...))
}

func risingCloses(n int, from float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
	}
	return out
}

// fixedStrategy replays a precomputed signal column.
type fixedStrategy struct {
	signals []types.Signal
	err     error
}

func (s fixedStrategy) Name() string {
	return "fixed"
}

func (s fixedStrategy) Params() types.Params {
	return types.Params{"n": len(s.signals)}
}

func (s fixedStrategy) Calculate(candles []types.Candle) ([]types.Signal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.signals, nil
}

func repeatSignal(sig types.Signal, n int) []types.Signal {
	out := make([]types.Signal, n)
	for i := range out {
		out[i] = sig
	}
	return out
}

func frictionless() *ExecutionConfig {
	return NewExecutionConfig(decimal.Zero, decimal.Zero, PriceClose)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
