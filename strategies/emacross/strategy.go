package emacross

import (
	"quantlab/internal/engine"
	"quantlab/internal/params"
	"quantlab/types"

	"github.com/markcheno/go-talib"
)

const (
	Name       = "ema_cross"
	SimpleName = "simple_ema_cross"
)

type Config struct {
	ShortPeriod    int     `param:"short_period" default:"5" validate:"gte=1"`
	LongPeriod     int     `param:"long_period" default:"20" validate:"gtfield=ShortPeriod"`
	TrendPeriod    int     `param:"trend_period" default:"60" validate:"gte=1"`
	RSIPeriod      int     `param:"rsi_period" default:"14" validate:"gte=2"`
	RSIThreshold   float64 `param:"rsi_threshold" default:"50" validate:"gte=0,lte=100"`
	UseTrendFilter bool    `param:"use_trend_filter" default:"true"`
	UseRSIFilter   bool    `param:"use_rsi_filter" default:"true"`
}

type SimpleConfig struct {
	ShortPeriod int `param:"short_period" default:"5" validate:"gte=1"`
	LongPeriod  int `param:"long_period" default:"20" validate:"gtfield=ShortPeriod"`
}

// Strategy is long while the short EMA is above the long EMA. With filters
// enabled a crossover only counts above the trend EMA and with RSI over the threshold.
type Strategy struct {
	name string
	cfg  Config
}

func New(p types.Params) (engine.Strategy, error) {
	var cfg Config
	if err := params.Decode(p, &cfg); err != nil {
		return nil, err
	}
	return &Strategy{name: Name, cfg: cfg}, nil
}

// NewSimple builds the unfiltered crossover.
func NewSimple(p types.Params) (engine.Strategy, error) {
	var simple SimpleConfig
	if err := params.Decode(p, &simple); err != nil {
		return nil, err
	}
	return &Strategy{
		name: SimpleName,
		cfg: Config{
			ShortPeriod: simple.ShortPeriod,
			LongPeriod:  simple.LongPeriod,
		},
	}, nil
}

var (
	Type       = engine.NewStrategyType(Name, New)
	SimpleType = engine.NewStrategyType(SimpleName, NewSimple)
)

func DefaultGrid() types.ParamGrid {
	return types.ParamGrid{
		"short_period": {5, 8, 12},
		"long_period":  {20, 26, 34},
	}
}

func (s *Strategy) Name() string {
	return s.name
}

func (s *Strategy) Params() types.Params {
	if s.name == SimpleName {
		return params.Encode(SimpleConfig{ShortPeriod: s.cfg.ShortPeriod, LongPeriod: s.cfg.LongPeriod})
	}
	return params.Encode(s.cfg)
}

// warmup is the first index at which every enabled indicator has a value.
func (s *Strategy) warmup() int {
	w := s.cfg.LongPeriod - 1
	if s.cfg.UseTrendFilter {
		w = max(w, s.cfg.TrendPeriod-1)
	}
	if s.cfg.UseRSIFilter {
		w = max(w, s.cfg.RSIPeriod)
	}
	return w
}

// MinBars is the shortest history that produces any non-flat signal.
func (s *Strategy) MinBars() int {
	return s.warmup() + 1
}

func (s *Strategy) Calculate(candles []types.Candle) ([]types.Signal, error) {
	signals := make([]types.Signal, len(candles))
	if len(candles) < s.MinBars() {
		return signals, nil
	}

	closes := types.Closes(candles)
	short := talib.Ema(closes, s.cfg.ShortPeriod)
	long := talib.Ema(closes, s.cfg.LongPeriod)

	var trend, rsi []float64
	if s.cfg.UseTrendFilter {
		trend = talib.Ema(closes, s.cfg.TrendPeriod)
	}
	if s.cfg.UseRSIFilter {
		rsi = talib.Rsi(closes, s.cfg.RSIPeriod)
	}

	for i := s.warmup(); i < len(candles); i++ {
		switch {
		case short[i] > long[i]:
			signals[i] = types.SignalLong
			if trend != nil && closes[i] <= trend[i] {
				signals[i] = types.SignalFlat
			}
			if rsi != nil && rsi[i] <= s.cfg.RSIThreshold {
				signals[i] = types.SignalFlat
			}
		case short[i] < long[i]:
			signals[i] = types.SignalExit
		}
	}
	return signals, nil
}
