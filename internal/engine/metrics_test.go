package engine

import (
	"math"
	"testing"

	"quantlab/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func equityCurve(values ...string) []types.EquityPoint {
	curve := make([]types.EquityPoint, len(values))
	for i, v := range values {
		curve[i] = types.NewEquityPoint(testStart.AddDate(0, 0, i), d(v), decimal.Zero)
	}
	return curve
}

func tradeWithPnL(net, ret, fees string) types.Trade {
	return types.Trade{NetPnL: d(net), ReturnPct: d(ret), FeesPaid: d(fees)}
}

func TestCalculateMetrics_Empty(t *testing.T) {
	m := CalculateMetrics(MetricsInput{InitialEquity: d("1000"), Interval: types.Day})
	assert.Equal(t, types.Metrics{}, m)
}

func TestCalcTotalAndAnnualizedReturn(t *testing.T) {
	curve := equityCurve("1000", "1100", "1210")
	total := calcTotalReturn(d("1000"), curve)
	assert.InDelta(t, 0.21, total, 1e-12)

	// 3 bars at 3 periods per year is exactly one year.
	assert.InDelta(t, 0.21, calcAnnualizedReturn(total, 3, 3), 1e-12)
	assert.Equal(t, -1.0, calcAnnualizedReturn(-1.5, 10, 365))
	assert.Equal(t, 0.0, calcAnnualizedReturn(0.5, 0, 365))
	assert.Equal(t, 0.0, calcTotalReturn(decimal.Zero, curve))
}

func TestCalcSharpeRatio(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{name: "no returns", returns: nil, want: 0},
		{name: "single return", returns: []float64{0.1}, want: 0},
		{name: "zero variance", returns: []float64{0.01, 0.01, 0.01}, want: 0},
		// mean 0.02, sample std 0.01, sqrt(4) = 2
		{name: "sample std", returns: []float64{0.01, 0.02, 0.03}, want: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, calcSharpeRatio(tc.returns, 4, 0), 1e-9)
		})
	}
}

func TestCalcSharpeRatio_RiskFreeLowersRatio(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03, -0.01}
	assert.Less(t, calcSharpeRatio(returns, 365, 0.05), calcSharpeRatio(returns, 365, 0))
}

func TestCalcMaxDrawdown(t *testing.T) {
	tests := []struct {
		name  string
		curve []types.EquityPoint
		want  float64
	}{
		{name: "empty", curve: nil, want: 0},
		{name: "monotonic", curve: equityCurve("100", "110", "120"), want: 0},
		{name: "single dip", curve: equityCurve("100", "120", "90", "130"), want: -0.25},
		{name: "deepest of two", curve: equityCurve("100", "80", "150", "120"), want: -0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := calcMaxDrawdown(tc.curve)
			assert.InDelta(t, tc.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestCalcTradeStats(t *testing.T) {
	trades := []types.Trade{
		tradeWithPnL("30", "0.03", "1"),
		tradeWithPnL("-10", "-0.01", "1"),
		tradeWithPnL("-5", "-0.005", "1"),
		tradeWithPnL("15", "0.015", "1"),
	}

	assert.Equal(t, 0.5, calcWinRate(trades))
	wins, losses := calcWinLossSums(trades)
	assert.InDelta(t, 3.0, calcProfitFactor(wins, losses), 1e-12)
	assert.InDelta(t, 0.0075, calcAvgTradeReturn(trades), 1e-12)
	assert.Equal(t, 2, calcMaxConsecutiveLosses(trades))
	assert.Equal(t, 4.0, calcTotalFees(trades))
}

func TestCalcProfitFactor_Caps(t *testing.T) {
	assert.Equal(t, float64(maxProfitFactor), calcProfitFactor(d("10"), decimal.Zero))
	assert.Equal(t, 0.0, calcProfitFactor(decimal.Zero, decimal.Zero))
	assert.Equal(t, float64(maxProfitFactor), calcProfitFactor(d("100000"), d("1")))
	assert.Equal(t, 0.0, calcWinRate(nil))
}

func TestCalcExposure(t *testing.T) {
	curve := []types.EquityPoint{
		types.NewEquityPoint(testStart, d("100"), decimal.Zero),
		types.NewEquityPoint(testStart, d("0"), d("100")),
		types.NewEquityPoint(testStart, d("0"), d("110")),
		types.NewEquityPoint(testStart, d("110"), decimal.Zero),
	}
	assert.Equal(t, 0.5, calcExposure(curve))
}

func TestFinite(t *testing.T) {
	assert.Equal(t, 0.0, finite(math.Inf(1)))
	assert.Equal(t, 0.0, finite(math.NaN()))
	assert.Equal(t, 1.5, finite(1.5))
}

func TestCalculateMetrics_UnknownIntervalNotAnnualized(t *testing.T) {
	curve := []types.EquityPoint{
		types.NewEquityPoint(testStart, d("1000"), d("0")),
		types.NewEquityPoint(testStart.AddDate(0, 0, 1), d("0"), d("1010")),
		types.NewEquityPoint(testStart.AddDate(0, 0, 2), d("0"), d("1030")),
	}
	known := CalculateMetrics(MetricsInput{InitialEquity: d("1000"), Curve: curve, Interval: types.Day})
	assert.NotZero(t, known.AnnualizedReturn)
	assert.NotZero(t, known.SharpeRatio)

	m := CalculateMetrics(MetricsInput{InitialEquity: d("1000"), Curve: curve, Interval: "7"})
	assert.InDelta(t, 0.03, m.TotalReturn, 1e-12)
	assert.Zero(t, m.AnnualizedReturn)
	assert.Zero(t, m.SharpeRatio)
	assert.InDelta(t, 2.0/3.0, m.Exposure, 1e-12)
}
