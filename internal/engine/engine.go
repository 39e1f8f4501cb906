package engine

import (
	"fmt"
	"slices"

	"quantlab/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Engine runs single backtests. It holds only immutable configuration and is
// safe for concurrent use.
type Engine struct {
	executionConfig *ExecutionConfig
	portfolioConfig *PortfolioConfig
	reportingConfig *ReportingConfig
}

// NewEngine validates the configs; nil configs fall back to the defaults.
func NewEngine(executionConfig *ExecutionConfig, portfolioConfig *PortfolioConfig, reportingConfig *ReportingConfig) (*Engine, error) {
	if executionConfig == nil {
		executionConfig = DefaultExecutionConfig()
	}
	if portfolioConfig == nil {
		portfolioConfig = DefaultPortfolioConfig()
	}
	if reportingConfig == nil {
		reportingConfig = DefaultReportingConfig()
	}
	if err := executionConfig.validate(); err != nil {
		return nil, err
	}
	if err := portfolioConfig.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		executionConfig: executionConfig,
		portfolioConfig: portfolioConfig,
		reportingConfig: reportingConfig,
	}, nil
}

// Run validates the series, asks the strategy for its signals once and
// simulates them. Invalid input fails before the first bar is simulated.
func (e *Engine) Run(series types.Series, strat Strategy) (*types.BacktestResult, error) {
	if err := ValidateSeries(series); err != nil {
		return nil, err
	}

	candles := slices.Clone(series.Candles)
	signals, err := strat.Calculate(candles)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", strat.Name(), err)
	}
	if err := validateSignals(series.Candles, signals); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", strat.Name(), err)
	}

	bt := newBacktester(series.Candles, signals, e.portfolioConfig, newExecutionModel(e.executionConfig))
	if err := bt.run(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", strat.Name(), err)
	}

	metrics := CalculateMetrics(MetricsInput{
		InitialEquity: e.portfolioConfig.initialCash,
		Curve:         bt.curve,
		Trades:        bt.ledger.trades,
		Interval:      series.Interval,
		RiskFreeRate:  e.reportingConfig.sharpeRiskFreeRate,
	})

	params := strat.Params().Clone()
	result := &types.BacktestResult{
		ID:               resultID(strat.Name(), params, series),
		StrategyName:     strat.Name(),
		Params:           params,
		Ticker:           series.Ticker,
		Interval:         series.Interval,
		Start:            series.Start(),
		End:              series.End(),
		InitialCash:      e.portfolioConfig.initialCash,
		EquityCurve:      bt.curve,
		Trades:           bt.ledger.trades,
		Orders:           bt.ledger.orders,
		OpenPosition:     bt.ledger.openPosition(),
		Metrics:          metrics,
		BuyAndHoldReturn: calcBuyAndHoldReturn(series.Candles),
	}

	log.Debug().
		Str("strategy", result.StrategyName).
		Str("params", params.Key()).
		Int("bars", series.Len()).
		Int("trades", metrics.TradeCount).
		Float64("sharpe", metrics.SharpeRatio).
		Float64("total_return", metrics.TotalReturn).
		Msg("backtest finished")

	return result, nil
}

// Compare runs every strategy on the same series, in the given order.
func (e *Engine) Compare(series types.Series, strategies ...Strategy) ([]*types.BacktestResult, error) {
	results := make([]*types.BacktestResult, 0, len(strategies))
	for _, strat := range strategies {
		res, err := e.Run(series, strat)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// resultID is a name based UUID, so identical runs get identical IDs.
func resultID(name string, params types.Params, series types.Series) string {
	key := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d",
		name,
		params.Key(),
		series.Ticker,
		series.Interval,
		series.Start().UnixNano(),
		series.End().UnixNano(),
		series.Len(),
	)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func calcBuyAndHoldReturn(candles []types.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	first := candles[0].Close
	if !first.IsPositive() {
		return 0
	}
	last := candles[len(candles)-1].Close
	return last.Div(first).Sub(decimal.NewFromInt(1)).InexactFloat64()
}
