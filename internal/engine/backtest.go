package engine

import (
	"errors"
	"fmt"
	"time"

	"quantlab/types"
)

type runState int

const (
	stateInit runState = iota
	stateRunning
	stateDone
)

var errAlreadyRun = errors.New("backtester already ran")

// backtester replays one series through one precomputed signal column.
type backtester struct {
	candles       []types.Candle
	signals       []types.Signal
	ledger        *ledger
	closeOnFinish bool

	state runState
	curve []types.EquityPoint
}

func newBacktester(candles []types.Candle, signals []types.Signal, portfolioConfig *PortfolioConfig, exec executionModel) *backtester {
	return &backtester{
		candles:       candles,
		signals:       signals,
		ledger:        newLedger(portfolioConfig, exec),
		closeOnFinish: portfolioConfig.closeOnFinish,
		state:         stateInit,
	}
}

// run makes exactly one ledger transition per candle, in ascending time order,
// and records an equity point after each.
func (b *backtester) run() error {
	if b.state != stateInit {
		return errAlreadyRun
	}
	b.state = stateRunning
	b.curve = make([]types.EquityPoint, 0, len(b.candles))

	last := len(b.candles) - 1
	for i, candle := range b.candles {
		if _, _, err := b.ledger.apply(b.signals[i], candle); err != nil {
			return fmt.Errorf("bar %d at %s: %w", i, candle.Timestamp.Format(time.RFC3339), err)
		}
		// Liquidate on the last bar so runs with and without an open position compare.
		if i == last && b.closeOnFinish && b.ledger.position.IsOpen() {
			if _, _, err := b.ledger.close(candle, types.ExitLiquidation); err != nil {
				return fmt.Errorf("liquidate at %s: %w", candle.Timestamp.Format(time.RFC3339), err)
			}
		}
		b.curve = append(b.curve, b.ledger.markToMarket(candle))
	}

	b.state = stateDone
	return nil
}
