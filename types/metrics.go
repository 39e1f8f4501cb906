package types

// Metrics are the scalar statistics of one backtest run. Every field is
// always a finite number, including for runs without trades.
type Metrics struct {
	TotalReturn          float64 `json:"totalReturn"`
	AnnualizedReturn     float64 `json:"annualizedReturn"`
	SharpeRatio          float64 `json:"sharpeRatio"`
	MaxDrawdown          float64 `json:"maxDrawdown"`
	WinRate              float64 `json:"winRate"`
	TradeCount           int     `json:"tradeCount"`
	ProfitFactor         float64 `json:"profitFactor"`
	AvgTradeReturn       float64 `json:"avgTradeReturn"`
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses"`
	TotalFees            float64 `json:"totalFees"`
	Exposure             float64 `json:"exposure"`
}

// AggregateMetrics is the arithmetic mean of Metrics over walk-forward folds.
type AggregateMetrics struct {
	Folds                int     `json:"folds"`
	TotalReturn          float64 `json:"totalReturn"`
	AnnualizedReturn     float64 `json:"annualizedReturn"`
	SharpeRatio          float64 `json:"sharpeRatio"`
	MaxDrawdown          float64 `json:"maxDrawdown"`
	WinRate              float64 `json:"winRate"`
	TradeCount           float64 `json:"tradeCount"`
	TotalTrades          int     `json:"totalTrades"`
	ProfitFactor         float64 `json:"profitFactor"`
	AvgTradeReturn       float64 `json:"avgTradeReturn"`
	MaxConsecutiveLosses float64 `json:"maxConsecutiveLosses"`
	TotalFees            float64 `json:"totalFees"`
	Exposure             float64 `json:"exposure"`
}
