package types

type Side string

type PositionSide string

type ExitReason string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"

	PositionLong PositionSide = "LONG"
	PositionFlat PositionSide = "FLAT"

	ExitSignal      ExitReason = "signal"
	ExitLiquidation ExitReason = "liquidation"
)
