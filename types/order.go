package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the record of one simulated fill.
type Order struct {
	Side           Side            `json:"side"`
	Time           time.Time       `json:"time"`
	ReferencePrice decimal.Decimal `json:"referencePrice"`
	FillPrice      decimal.Decimal `json:"fillPrice"`
	Quantity       decimal.Decimal `json:"quantity"`
	Notional       decimal.Decimal `json:"notional"`
	Fee            decimal.Decimal `json:"fee"`
	Reason         string          `json:"reason"`
}

func NewOrder(
	side Side,
	createdAt time.Time,
	referencePrice decimal.Decimal,
	fillPrice decimal.Decimal,
	quantity decimal.Decimal,
	fee decimal.Decimal,
	reason string,
) Order {
	return Order{
		Side:           side,
		Time:           createdAt,
		ReferencePrice: referencePrice,
		FillPrice:      fillPrice,
		Quantity:       quantity,
		Notional:       fillPrice.Mul(quantity),
		Fee:            fee,
		Reason:         reason,
	}
}
