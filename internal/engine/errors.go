package engine

import (
	"errors"
	"fmt"
)

// Error kinds. Every sentinel below wraps exactly one of them.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Input errors.
var (
	ErrEmptySeries      = fmt.Errorf("%w: empty candle series", ErrInvalidInput)
	ErrUnknownInterval  = fmt.Errorf("%w: interval has no annualization factor", ErrInvalidInput)
	ErrUnsortedSeries   = fmt.Errorf("%w: candle timestamps not strictly ascending", ErrInvalidInput)
	ErrSignalMisaligned = fmt.Errorf("%w: signal count does not match candle count", ErrInvalidInput)
	ErrUnknownSignal    = fmt.Errorf("%w: unknown signal value", ErrInvalidInput)
	ErrNotEnoughCandles = fmt.Errorf("%w: not enough candles", ErrInvalidInput)
)

// Configuration errors.
var (
	ErrEmptyParamGrid          = fmt.Errorf("%w: empty parameter grid", ErrInvalidConfig)
	ErrInvalidTrainRatio       = fmt.Errorf("%w: train ratio must be in (0, 1)", ErrInvalidConfig)
	ErrInvalidFolds            = fmt.Errorf("%w: folds must be at least 1", ErrInvalidConfig)
	ErrInvalidFeeRate          = fmt.Errorf("%w: fee rate must be in [0, 1)", ErrInvalidConfig)
	ErrInvalidSlippage         = fmt.Errorf("%w: slippage must be in [0, 1)", ErrInvalidConfig)
	ErrInvalidPositionFraction = fmt.Errorf("%w: position fraction must be in (0, 1]", ErrInvalidConfig)
	ErrInvalidInitialCash      = fmt.Errorf("%w: initial cash must not be negative", ErrInvalidConfig)
	ErrUnknownPriceReference   = fmt.Errorf("%w: unknown reference price", ErrInvalidConfig)
	ErrUnknownRankMetric       = fmt.Errorf("%w: unknown ranking metric", ErrInvalidConfig)
	ErrUnknownWindowMode       = fmt.Errorf("%w: unknown walk-forward window mode", ErrInvalidConfig)
	ErrUnknownStrategy         = fmt.Errorf("%w: unknown strategy", ErrInvalidConfig)
	ErrInvalidParams           = fmt.Errorf("%w: invalid strategy parameters", ErrInvalidConfig)
	ErrNoValidCombination      = fmt.Errorf("%w: no valid parameter combination", ErrInvalidConfig)
)

// ErrLookAheadLeak means a walk-forward fold would evaluate parameters on
// candles they were chosen from.
var ErrLookAheadLeak = errors.New("walk-forward test range is not strictly after its train range")

// ErrNegativeBalance means the ledger was asked to do something its sizing
// policy should have prevented.
var ErrNegativeBalance = errors.New("ledger balance would become negative")
