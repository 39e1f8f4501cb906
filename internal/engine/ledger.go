package engine

import (
	"quantlab/types"

	"github.com/shopspring/decimal"
)

const (
	reasonEntry = "entry"
)

// ledger owns cash and the single open position of one run. It is not safe
// for concurrent use; every run gets its own.
type ledger struct {
	cash      decimal.Decimal
	position  types.Position
	exec      executionModel
	fraction  decimal.Decimal
	precision int32
	trades    []types.Trade
	orders    []types.Order
}

func newLedger(cfg *PortfolioConfig, exec executionModel) *ledger {
	return &ledger{
		cash:      cfg.initialCash,
		position:  types.Position{Side: types.PositionFlat},
		exec:      exec,
		fraction:  cfg.positionFraction,
		precision: cfg.quantityPrecision,
	}
}

// apply moves the ledger toward the state the signal asks for. A signal that
// matches the current state is a no-op. The returned order and trade are only
// non-nil when the ledger changed.
func (l *ledger) apply(signal types.Signal, candle types.Candle) (*types.Order, *types.Trade, error) {
	switch {
	case signal == types.SignalLong && !l.position.IsOpen():
		order, err := l.open(candle)
		return order, nil, err
	case signal == types.SignalExit && l.position.IsOpen():
		return l.close(candle, types.ExitSignal)
	}
	return nil, nil, nil
}

func (l *ledger) open(candle types.Candle) (*types.Order, error) {
	fill := l.exec.fillPrice(candle, types.SideTypeBuy)
	qty := l.entryQuantity(fill)
	if !qty.IsPositive() {
		return nil, nil
	}

	order := l.exec.order(candle, types.SideTypeBuy, qty, reasonEntry)
	newCash := l.cash.Sub(order.Notional).Sub(order.Fee)
	if newCash.IsNegative() {
		return nil, ErrNegativeBalance
	}

	l.cash = newCash
	l.position = types.Position{
		Side:       types.PositionLong,
		Quantity:   qty,
		EntryPrice: order.FillPrice,
		EntryTime:  candle.Timestamp,
		EntryFee:   order.Fee,
	}
	l.orders = append(l.orders, order)
	return &order, nil
}

// entryQuantity spends at most fraction*cash including the entry fee.
// Quantities are rounded down so the debit never exceeds the budget.
func (l *ledger) entryQuantity(fill decimal.Decimal) decimal.Decimal {
	if !fill.IsPositive() || !l.cash.IsPositive() {
		return decimal.Zero
	}
	budget := l.cash.Mul(l.fraction)
	unitCost := fill.Mul(decimal.NewFromInt(1).Add(l.exec.feeRate))
	qty := budget.Div(unitCost).RoundFloor(l.precision)
	// Div rounds at DivisionPrecision; step back one unit if that rounded up.
	if qty.Mul(unitCost).GreaterThan(budget) {
		qty = qty.Sub(decimal.New(1, -l.precision))
	}
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}

func (l *ledger) close(candle types.Candle, reason types.ExitReason) (*types.Order, *types.Trade, error) {
	pos := l.position
	order := l.exec.order(candle, types.SideTypeSell, pos.Quantity, string(reason))

	proceeds := order.Notional.Sub(order.Fee)
	costBasis := pos.CostBasis()
	fees := pos.EntryFee.Add(order.Fee)
	gross := order.Notional.Sub(costBasis)
	net := gross.Sub(fees)

	invested := costBasis.Add(pos.EntryFee)
	returnPct := decimal.Zero
	if invested.IsPositive() {
		returnPct = net.Div(invested)
	}

	newCash := l.cash.Add(proceeds)
	if newCash.IsNegative() {
		return nil, nil, ErrNegativeBalance
	}

	trade := types.Trade{
		EntryTime:  pos.EntryTime,
		ExitTime:   candle.Timestamp,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  order.FillPrice,
		Quantity:   pos.Quantity,
		GrossPnL:   gross,
		FeesPaid:   fees,
		NetPnL:     net,
		ReturnPct:  returnPct,
		ExitReason: reason,
	}

	l.cash = newCash
	l.position = types.Position{Side: types.PositionFlat}
	l.orders = append(l.orders, order)
	l.trades = append(l.trades, trade)
	return &order, &trade, nil
}

// markToMarket values the open quantity at the candle close.
func (l *ledger) markToMarket(candle types.Candle) types.EquityPoint {
	positionValue := decimal.Zero
	if l.position.IsOpen() {
		positionValue = l.position.Quantity.Mul(candle.Close)
	}
	return types.NewEquityPoint(candle.Timestamp, l.cash, positionValue)
}

func (l *ledger) openPosition() *types.Position {
	if !l.position.IsOpen() {
		return nil
	}
	pos := l.position
	return &pos
}
