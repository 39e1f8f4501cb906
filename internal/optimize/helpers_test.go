package optimize

import (
	"fmt"
	"math"
	"testing"
	"time"

	"quantlab/internal/engine"
	"quantlab/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// waveSeries oscillates around 100 with a slow upward drift, so different
// entry windows produce different results.
func waveSeries(n int) types.Series {
	candles := make([]types.Candle, n)
	for i := range candles {
		price := decimal.NewFromFloat(100 + float64(i)*0.3 + 8*math.Sin(float64(i)/3)).Round(4)
		candles[i] = types.Candle{
			Ticker:    "ETH",
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    decimal.NewFromInt(10),
			Interval:  types.Day,
			Timestamp: testStart.AddDate(0, 0, i),
		}
	}
	return types.NewSeries("ETH", types.Day, candles)
}

// windowStrategy goes long every `every` bars and exits `hold` bars later.
type windowStrategy struct {
	every int
	hold  int
}

func (s windowStrategy) Name() string {
	return "window"
}

func (s windowStrategy) Params() types.Params {
	return types.Params{"every": s.every, "hold": s.hold}
}

func (s windowStrategy) Calculate(candles []types.Candle) ([]types.Signal, error) {
	signals := make([]types.Signal, len(candles))
	for i := range signals {
		switch {
		case i%s.every == 0:
			signals[i] = types.SignalLong
		case i%s.every == s.hold:
			signals[i] = types.SignalExit
		}
	}
	return signals, nil
}

func windowFactory(params types.Params) (engine.Strategy, error) {
	every, ok := params["every"].(int)
	if !ok {
		return nil, fmt.Errorf("%w: every must be an int", engine.ErrInvalidParams)
	}
	hold, ok := params["hold"].(int)
	if !ok {
		return nil, fmt.Errorf("%w: hold must be an int", engine.ErrInvalidParams)
	}
	if every <= 0 || hold <= 0 || hold >= every {
		return nil, fmt.Errorf("%w: need 0 < hold < every, got every=%d hold=%d", engine.ErrInvalidParams, every, hold)
	}
	return windowStrategy{every: every, hold: hold}, nil
}

func testGrid() types.ParamGrid {
	return types.ParamGrid{
		"every": {6, 10, 14},
		"hold":  {2, 3, 5},
	}
}

func newTestOptimizer(t *testing.T, cfg Config) *Optimizer {
	t.Helper()
	e, err := engine.NewEngine(nil, nil, nil)
	require.NoError(t, err)
	o, err := NewOptimizer(e, cfg)
	require.NoError(t, err)
	return o
}
