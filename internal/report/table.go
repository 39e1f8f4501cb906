package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"quantlab/types"

	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// PrintResult writes the summary of one backtest followed by its trades.
func PrintResult(w io.Writer, res *types.BacktestResult) {
	fmt.Fprintf(w, "%s %s on %s/%s  %s -> %s\n",
		res.StrategyName, res.Params.Key(), res.Ticker, res.Interval,
		res.Start.Format(timeLayout), res.End.Format(timeLayout))

	m := res.Metrics
	summary := newTable(w, "Metric", "Value")
	summary.AppendBulk([][]string{
		{"Initial cash", res.InitialCash.StringFixed(2)},
		{"Final equity", res.FinalEquity().StringFixed(2)},
		{"Total return", pct(m.TotalReturn)},
		{"Buy & hold return", pct(res.BuyAndHoldReturn)},
		{"Annualized return", pct(m.AnnualizedReturn)},
		{"Sharpe ratio", num(m.SharpeRatio)},
		{"Max drawdown", pct(m.MaxDrawdown)},
		{"Trades", strconv.Itoa(m.TradeCount)},
		{"Win rate", pct(m.WinRate)},
		{"Profit factor", num(m.ProfitFactor)},
		{"Avg trade return", pct(m.AvgTradeReturn)},
		{"Max consecutive losses", strconv.Itoa(m.MaxConsecutiveLosses)},
		{"Total fees", num(m.TotalFees)},
		{"Exposure", pct(m.Exposure)},
	})
	summary.Render()

	if len(res.Trades) == 0 {
		return
	}
	trades := newTable(w, "#", "Entry", "Exit", "Held", "Qty", "Entry px", "Exit px", "Net PnL", "Return", "Reason")
	for i, t := range res.Trades {
		trades.Append([]string{
			strconv.Itoa(i + 1),
			t.EntryTime.Format(timeLayout),
			t.ExitTime.Format(timeLayout),
			t.Holding().String(),
			t.Quantity.String(),
			t.EntryPrice.StringFixed(4),
			t.ExitPrice.StringFixed(4),
			t.NetPnL.StringFixed(2),
			pct(t.ReturnPct.InexactFloat64()),
			string(t.ExitReason),
		})
	}
	trades.Render()
}

// PrintRanking lists at most top results in rank order. top <= 0 prints all of them.
func PrintRanking(w io.Writer, results []*types.BacktestResult, top int) {
	if top <= 0 || top > len(results) {
		top = len(results)
	}
	table := newTable(w, "Rank", "Params", "Sharpe", "Return", "Max DD", "Trades", "Win rate", "PF")
	for i, res := range results[:top] {
		m := res.Metrics
		table.Append([]string{
			strconv.Itoa(i + 1),
			res.Params.Key(),
			num(m.SharpeRatio),
			pct(m.TotalReturn),
			pct(m.MaxDrawdown),
			strconv.Itoa(m.TradeCount),
			pct(m.WinRate),
			num(m.ProfitFactor),
		})
	}
	table.Render()
}

// PrintWalkForward writes one row per fold and the out-of-sample means.
func PrintWalkForward(w io.Writer, res *types.WalkForwardResult) {
	fmt.Fprintf(w, "%s walk-forward on %s/%s, %s, train ratio %.2f\n",
		res.StrategyName, res.Ticker, res.Interval, res.Mode, res.TrainRatio)

	folds := newTable(w, "Fold", "Train", "Test", "Best params", "Train Sharpe", "Train return", "Test Sharpe", "Test return", "Test DD")
	for _, f := range res.Folds {
		row := []string{
			strconv.Itoa(f.Fold.Index + 1),
			period(f.TrainStart, f.TrainEnd),
			period(f.TestStart, f.TestEnd),
			f.BestParams.Key(),
			num(f.TrainMetrics.SharpeRatio),
			pct(f.TrainMetrics.TotalReturn),
			"-", "-", "-",
		}
		if f.Test != nil {
			row[6] = num(f.Test.Metrics.SharpeRatio)
			row[7] = pct(f.Test.Metrics.TotalReturn)
			row[8] = pct(f.Test.Metrics.MaxDrawdown)
		}
		folds.Append(row)
	}
	folds.Render()

	agg := res.OutOfSample
	summary := newTable(w, "Out of sample", "Mean")
	summary.AppendBulk([][]string{
		{"Folds", strconv.Itoa(agg.Folds)},
		{"Total return", pct(agg.TotalReturn)},
		{"Annualized return", pct(agg.AnnualizedReturn)},
		{"Sharpe ratio", num(agg.SharpeRatio)},
		{"Max drawdown", pct(agg.MaxDrawdown)},
		{"Win rate", pct(agg.WinRate)},
		{"Trades per fold", num(agg.TradeCount)},
		{"Trades", strconv.Itoa(agg.TotalTrades)},
		{"Profit factor", num(agg.ProfitFactor)},
	})
	summary.Render()
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func period(start, end time.Time) string {
	return start.Format(timeLayout) + " -> " + end.Format(timeLayout)
}
