package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position struct {
	Side       PositionSide
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time
	EntryFee   decimal.Decimal
}

func (p Position) IsOpen() bool {
	return p.Side == PositionLong && p.Quantity.IsPositive()
}

// CostBasis is what was paid for the open quantity, fees excluded.
func (p Position) CostBasis() decimal.Decimal {
	return p.Quantity.Mul(p.EntryPrice)
}

// EquityPoint is the marked-to-market account value after one bar.
type EquityPoint struct {
	Time          time.Time       `json:"time"`
	Cash          decimal.Decimal `json:"cash"`
	PositionValue decimal.Decimal `json:"positionValue"`
	TotalEquity   decimal.Decimal `json:"totalEquity"`
}

func NewEquityPoint(t time.Time, cash, positionValue decimal.Decimal) EquityPoint {
	return EquityPoint{
		Time:          t,
		Cash:          cash,
		PositionValue: positionValue,
		TotalEquity:   cash.Add(positionValue),
	}
}
