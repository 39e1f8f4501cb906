package engine

import (
	"quantlab/types"

	"github.com/shopspring/decimal"
)

var three = decimal.NewFromInt(3)

// executionModel turns a signal transition into a fill. Fills are immediate and
// complete at the adjusted reference price; there is no order book depth.
type executionModel struct {
	feeRate   decimal.Decimal
	slippage  decimal.Decimal
	reference PriceReference
}

func newExecutionModel(cfg *ExecutionConfig) executionModel {
	return executionModel{
		feeRate:   cfg.feeRate,
		slippage:  cfg.slippage,
		reference: cfg.reference,
	}
}

func (m executionModel) referencePrice(candle types.Candle) decimal.Decimal {
	switch m.reference {
	case PriceOpen:
		return candle.Open
	case PriceTypical:
		return candle.High.Add(candle.Low).Add(candle.Close).Div(three)
	default:
		return candle.Close
	}
}

// fillPrice moves the reference price against the trader: buys fill higher, sells lower.
func (m executionModel) fillPrice(candle types.Candle, side types.Side) decimal.Decimal {
	ref := m.referencePrice(candle)
	one := decimal.NewFromInt(1)
	if side == types.SideTypeBuy {
		return ref.Mul(one.Add(m.slippage))
	}
	return ref.Mul(one.Sub(m.slippage))
}

// fee is charged on the notional of every fill, entry and exit alike.
func (m executionModel) fee(notional decimal.Decimal) decimal.Decimal {
	return notional.Mul(m.feeRate)
}

func (m executionModel) order(candle types.Candle, side types.Side, qty decimal.Decimal, reason string) types.Order {
	fill := m.fillPrice(candle, side)
	return types.NewOrder(
		side,
		candle.Timestamp,
		m.referencePrice(candle),
		fill,
		qty,
		m.fee(fill.Mul(qty)),
		reason,
	)
}
