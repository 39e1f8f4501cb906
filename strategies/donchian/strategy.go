package donchian

import (
	"quantlab/internal/engine"
	"quantlab/internal/params"
	"quantlab/types"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

const Name = "donchian"

type Config struct {
	// Period is the number of completed candles forming the channel.
	Period    int `param:"period" default:"20" validate:"gte=2"`
	ATRPeriod int `param:"atr_period" default:"20" validate:"gte=1"`
	// ATRMultiplier sets the stop distance below the entry close; 0 disables the stop.
	ATRMultiplier float64 `param:"atr_multiplier" default:"2" validate:"gte=0"`
}

// Strategy buys a break of the highest high of the preceding Period candles
// and exits on a break of the lowest low, or on the ATR stop.
type Strategy struct {
	cfg Config
}

func New(p types.Params) (engine.Strategy, error) {
	var cfg Config
	if err := params.Decode(p, &cfg); err != nil {
		return nil, err
	}
	return &Strategy{cfg: cfg}, nil
}

var Type = engine.NewStrategyType(Name, New)

func DefaultGrid() types.ParamGrid {
	return types.ParamGrid{
		"period":         {10, 20, 55},
		"atr_multiplier": {0.0, 2.0, 3.0},
	}
}

func (s *Strategy) Name() string {
	return Name
}

func (s *Strategy) Params() types.Params {
	return params.Encode(s.cfg)
}

func (s *Strategy) MinBars() int {
	return s.cfg.Period + 1
}

func (s *Strategy) Calculate(candles []types.Candle) ([]types.Signal, error) {
	signals := make([]types.Signal, len(candles))
	if len(candles) < s.MinBars() {
		return signals, nil
	}

	var atr []float64
	if s.cfg.ATRMultiplier > 0 && len(candles) > s.cfg.ATRPeriod {
		highs, lows := types.HighsLows(candles)
		atr = talib.Atr(highs, lows, types.Closes(candles), s.cfg.ATRPeriod)
	}
	multiplier := decimal.NewFromFloat(s.cfg.ATRMultiplier)

	inPosition := false
	stopLoss := decimal.Zero
	for i := s.cfg.Period; i < len(candles); i++ {
		candle := candles[i]
		highestHigh, lowestLow := donchianHighLow(candles[i-s.cfg.Period : i])

		switch {
		case candle.High.GreaterThan(highestHigh):
			signals[i] = types.SignalLong
			if !inPosition {
				stopLoss = decimal.Zero
				if atr != nil && i >= s.cfg.ATRPeriod {
					stopLoss = candle.Close.Sub(decimal.NewFromFloat(atr[i]).Mul(multiplier))
				}
			}
			inPosition = true
		case candle.Low.LessThan(lowestLow):
			signals[i] = types.SignalExit
			inPosition = false
		case inPosition && stopLoss.IsPositive() && candle.Close.LessThan(stopLoss):
			signals[i] = types.SignalExit
			inPosition = false
		}
	}
	return signals, nil
}

func donchianHighLow(candles []types.Candle) (decimal.Decimal, decimal.Decimal) {
	if len(candles) == 0 {
		return decimal.Zero, decimal.Zero
	}

	highest := candles[0].High
	lowest := candles[0].Low
	for _, c := range candles[1:] {
		if c.High.GreaterThan(highest) {
			highest = c.High
		}
		if c.Low.LessThan(lowest) {
			lowest = c.Low
		}
	}
	return highest, lowest
}
