package engine

import (
	"math"

	"quantlab/types"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// maxProfitFactor stands in for an infinite profit factor (wins, no losses).
const maxProfitFactor = 999

// Standard deviations below this are float noise on constant returns.
const minStdDev = 1e-12

type MetricsInput struct {
	InitialEquity decimal.Decimal
	Curve         []types.EquityPoint
	Trades        []types.Trade
	Interval      types.Interval
	// Annual risk-free rate, subtracted per bar in the Sharpe ratio.
	RiskFreeRate float64
}

// CalculateMetrics is a total function: empty curves, runs without trades and
// flat equity all resolve to zeros rather than errors or NaN.
func CalculateMetrics(in MetricsInput) types.Metrics {
	totalReturn := calcTotalReturn(in.InitialEquity, in.Curve)
	sumWins, sumLosses := calcWinLossSums(in.Trades)

	// Without a known bar length there is nothing to annualize by.
	var annualized, sharpe float64
	if periodsPerYear, ok := in.Interval.AnnualizationFactor(); ok {
		annualized = calcAnnualizedReturn(totalReturn, len(in.Curve), periodsPerYear)
		sharpe = calcSharpeRatio(barReturns(in.Curve), periodsPerYear, in.RiskFreeRate)
	}

	return types.Metrics{
		TotalReturn:          totalReturn,
		AnnualizedReturn:     annualized,
		SharpeRatio:          sharpe,
		MaxDrawdown:          calcMaxDrawdown(in.Curve),
		WinRate:              calcWinRate(in.Trades),
		TradeCount:           len(in.Trades),
		ProfitFactor:         calcProfitFactor(sumWins, sumLosses),
		AvgTradeReturn:       calcAvgTradeReturn(in.Trades),
		MaxConsecutiveLosses: calcMaxConsecutiveLosses(in.Trades),
		TotalFees:            calcTotalFees(in.Trades),
		Exposure:             calcExposure(in.Curve),
	}
}

func calcTotalReturn(initial decimal.Decimal, curve []types.EquityPoint) float64 {
	if len(curve) == 0 || !initial.IsPositive() {
		return 0
	}
	final := curve[len(curve)-1].TotalEquity
	return final.Div(initial).Sub(decimal.NewFromInt(1)).InexactFloat64()
}

// calcAnnualizedReturn compounds the total return over bars/periodsPerYear years.
// A total loss (or worse) annualizes to -1.
func calcAnnualizedReturn(totalReturn float64, bars int, periodsPerYear float64) float64 {
	if bars <= 0 {
		return 0
	}
	base := 1 + totalReturn
	if base <= 0 {
		return -1
	}
	return finite(math.Pow(base, periodsPerYear/float64(bars)) - 1)
}

// barReturns are the simple returns between consecutive equity points.
// A non-positive previous equity yields a zero return for that bar.
func barReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].TotalEquity
		if !prev.IsPositive() {
			out = append(out, 0)
			continue
		}
		out = append(out, curve[i].TotalEquity.Div(prev).InexactFloat64()-1)
	}
	return out
}

// calcSharpeRatio uses the sample standard deviation (n-1) of bar returns.
func calcSharpeRatio(returns []float64, periodsPerYear, annualRiskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	rfPerBar := math.Pow(1+annualRiskFree, 1/periodsPerYear) - 1

	excess := make(stats.Float64Data, len(returns))
	for i, r := range returns {
		excess[i] = r - rfPerBar
	}

	mean, err := stats.Mean(excess)
	if err != nil {
		return 0
	}
	std, err := stats.StandardDeviationSample(excess)
	if err != nil || math.IsNaN(std) || std < minStdDev {
		return 0
	}
	return finite(mean / std * math.Sqrt(periodsPerYear))
}

// calcMaxDrawdown returns the deepest relative decline from a running peak, as a value <= 0.
func calcMaxDrawdown(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].TotalEquity
	maxDD := decimal.Zero
	for _, p := range curve {
		if p.TotalEquity.GreaterThan(peak) {
			peak = p.TotalEquity
		}
		if !peak.IsPositive() {
			continue
		}
		dd := p.TotalEquity.Sub(peak).Div(peak)
		if dd.LessThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD.InexactFloat64()
}

func calcWinRate(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.IsWin() {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

// calcWinLossSums returns gross winnings and the absolute gross losses.
func calcWinLossSums(trades []types.Trade) (decimal.Decimal, decimal.Decimal) {
	sumWins := decimal.Zero
	sumLosses := decimal.Zero
	for _, t := range trades {
		switch {
		case t.NetPnL.IsPositive():
			sumWins = sumWins.Add(t.NetPnL)
		case t.NetPnL.IsNegative():
			sumLosses = sumLosses.Add(t.NetPnL.Abs())
		}
	}
	return sumWins, sumLosses
}

func calcProfitFactor(sumWins, sumLosses decimal.Decimal) float64 {
	if sumLosses.IsZero() {
		if sumWins.IsPositive() {
			return maxProfitFactor
		}
		return 0
	}
	pf := sumWins.Div(sumLosses).InexactFloat64()
	return math.Min(pf, maxProfitFactor)
}

func calcAvgTradeReturn(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(t.ReturnPct)
	}
	return sum.Div(decimal.NewFromInt(int64(len(trades)))).InexactFloat64()
}

// calcMaxConsecutiveLosses counts the longest run of losing trades in exit order.
func calcMaxConsecutiveLosses(trades []types.Trade) int {
	maxLossStreak := 0
	currentStreak := 0
	for _, t := range trades {
		if t.NetPnL.IsNegative() {
			currentStreak++
			if currentStreak > maxLossStreak {
				maxLossStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxLossStreak
}

func calcTotalFees(trades []types.Trade) float64 {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.FeesPaid)
	}
	return total.InexactFloat64()
}

// calcExposure is the share of bars that ended with an open position.
func calcExposure(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	inMarket := 0
	for _, p := range curve {
		if p.PositionValue.IsPositive() {
			inMarket++
		}
	}
	return float64(inMarket) / float64(len(curve))
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
