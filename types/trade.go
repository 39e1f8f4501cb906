package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a closed round trip. It is created once when the position closes.
type Trade struct {
	EntryTime  time.Time       `json:"entryTime"`
	ExitTime   time.Time       `json:"exitTime"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Quantity   decimal.Decimal `json:"quantity"`
	GrossPnL   decimal.Decimal `json:"grossPnl"`
	FeesPaid   decimal.Decimal `json:"feesPaid"`
	NetPnL     decimal.Decimal `json:"netPnl"`
	ReturnPct  decimal.Decimal `json:"returnPct"`
	ExitReason ExitReason      `json:"exitReason"`
}

func (t Trade) IsWin() bool {
	return t.NetPnL.IsPositive()
}

func (t Trade) Holding() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
