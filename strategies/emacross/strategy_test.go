package emacross

import (
	"testing"
	"time"

	"quantlab/internal/engine"
	"quantlab/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candlesFrom(closes ...float64) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		p := decimal.NewFromFloat(c)
		out[i] = types.Candle{Ticker: "BTC", Open: p, High: p, Low: p, Close: p, Interval: types.Day, Timestamp: start.AddDate(0, 0, i)}
	}
	return out
}

func line(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func TestNew_Params(t *testing.T) {
	strat, err := New(types.Params{})
	require.NoError(t, err)
	assert.Equal(t, Name, strat.Name())
	assert.Equal(t, types.Params{
		"short_period":     5,
		"long_period":      20,
		"trend_period":     60,
		"rsi_period":       14,
		"rsi_threshold":    50.0,
		"use_trend_filter": true,
		"use_rsi_filter":   true,
	}, strat.Params())

	simple, err := NewSimple(types.Params{"short_period": 3, "long_period": 9})
	require.NoError(t, err)
	assert.Equal(t, SimpleName, simple.Name())
	assert.Equal(t, types.Params{"short_period": 3, "long_period": 9}, simple.Params())
}

func TestNew_RejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    types.Params
	}{
		{name: "short not below long", p: types.Params{"short_period": 20, "long_period": 10}},
		{name: "zero short", p: types.Params{"short_period": 0}},
		{name: "unknown key", p: types.Params{"fast": 3}},
		{name: "threshold above 100", p: types.Params{"rsi_threshold": 101}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.p)
			assert.ErrorIs(t, err, engine.ErrInvalidParams)
		})
	}

	_, err := NewSimple(types.Params{"trend_period": 60})
	assert.ErrorIs(t, err, engine.ErrInvalidParams)
}

func TestCalculate_ShortHistoryIsFlat(t *testing.T) {
	strat, err := NewSimple(types.Params{"short_period": 3, "long_period": 10})
	require.NoError(t, err)

	signals, err := strat.Calculate(candlesFrom(line(9, 100, 1)...))
	require.NoError(t, err)
	assert.Equal(t, make([]types.Signal, 9), signals)
}

func TestCalculate_SimpleCross(t *testing.T) {
	strat, err := NewSimple(types.Params{"short_period": 3, "long_period": 10})
	require.NoError(t, err)

	closes := append(line(30, 100, 1), line(30, 129, -1)...)
	signals, err := strat.Calculate(candlesFrom(closes...))
	require.NoError(t, err)
	require.Len(t, signals, 60)

	for i := 0; i < 9; i++ {
		assert.Equal(t, types.SignalFlat, signals[i], "warm-up bar %d", i)
	}
	assert.Equal(t, types.SignalLong, signals[20])
	assert.Equal(t, types.SignalExit, signals[59])
}

func TestCalculate_FiltersBlockEntries(t *testing.T) {
	rising := candlesFrom(line(80, 100, 1)...)

	withFilters, err := New(types.Params{"rsi_threshold": 50})
	require.NoError(t, err)
	signals, err := withFilters.Calculate(rising)
	require.NoError(t, err)
	assert.Equal(t, types.SignalLong, signals[79])

	// No RSI can exceed 100, so the filter blocks every entry.
	blocked, err := New(types.Params{"rsi_threshold": 100})
	require.NoError(t, err)
	signals, err = blocked.Calculate(rising)
	require.NoError(t, err)
	for i, s := range signals {
		assert.NotEqual(t, types.SignalLong, s, "bar %d", i)
	}
}

func TestCalculate_UsesOnlyPastCandles(t *testing.T) {
	closes := append(line(40, 100, 1.5), line(40, 160, -0.7)...)
	candles := candlesFrom(closes...)

	strat, err := New(types.Params{"trend_period": 30, "use_rsi_filter": false})
	require.NoError(t, err)

	full, err := strat.Calculate(candles)
	require.NoError(t, err)
	for _, k := range []int{31, 45, 60, 79} {
		prefix, err := strat.Calculate(candles[:k])
		require.NoError(t, err)
		assert.Equal(t, full[:k], prefix, "prefix %d", k)
	}
}

func TestStrategy_MinBars(t *testing.T) {
	strat, err := New(types.Params{})
	require.NoError(t, err)
	assert.Equal(t, 60, strat.(*Strategy).MinBars())

	simple, err := NewSimple(types.Params{})
	require.NoError(t, err)
	assert.Equal(t, 20, simple.(*Strategy).MinBars())
}
