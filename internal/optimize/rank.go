package optimize

import (
	"fmt"
	"sort"
	"strings"

	"quantlab/internal/engine"
	"quantlab/types"
)

type RankMetric string

const (
	RankSharpe         RankMetric = "sharpe_ratio"
	RankTotalReturn    RankMetric = "total_return"
	RankAnnualized     RankMetric = "annualized_return"
	RankMaxDrawdown    RankMetric = "max_drawdown"
	RankWinRate        RankMetric = "win_rate"
	RankProfitFactor   RankMetric = "profit_factor"
	RankAvgTradeReturn RankMetric = "avg_trade_return"
)

// Higher is better for every scorer. MaxDrawdown is <= 0, so the shallowest
// drawdown ranks first.
var scorers = map[RankMetric]func(m types.Metrics) float64{
	RankSharpe:         func(m types.Metrics) float64 { return m.SharpeRatio },
	RankTotalReturn:    func(m types.Metrics) float64 { return m.TotalReturn },
	RankAnnualized:     func(m types.Metrics) float64 { return m.AnnualizedReturn },
	RankMaxDrawdown:    func(m types.Metrics) float64 { return m.MaxDrawdown },
	RankWinRate:        func(m types.Metrics) float64 { return m.WinRate },
	RankProfitFactor:   func(m types.Metrics) float64 { return m.ProfitFactor },
	RankAvgTradeReturn: func(m types.Metrics) float64 { return m.AvgTradeReturn },
}

func ParseRankMetric(s string) (RankMetric, error) {
	m := RankMetric(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return RankSharpe, nil
	}
	if _, ok := scorers[m]; !ok {
		return "", fmt.Errorf("%w: %q", engine.ErrUnknownRankMetric, s)
	}
	return m, nil
}

// RankMetrics lists the supported ranking metrics in lexicographic order.
func RankMetrics() []string {
	out := make([]string, 0, len(scorers))
	for m := range scorers {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}

type scored struct {
	index  int
	score  float64
	result *types.BacktestResult
}

// rank sorts best first: score, then total return, then enumeration order.
func rank(entries []scored) []*types.BacktestResult {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.result.Metrics.TotalReturn != b.result.Metrics.TotalReturn {
			return a.result.Metrics.TotalReturn > b.result.Metrics.TotalReturn
		}
		return a.index < b.index
	})
	out := make([]*types.BacktestResult, len(entries))
	for i, e := range entries {
		out[i] = e.result
	}
	return out
}
