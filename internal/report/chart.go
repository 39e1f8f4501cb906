package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"quantlab/types"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	echartstypes "github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"
)

const (
	colorEquity   = "#3b82f6"
	colorHold     = "#9ca3af"
	colorDrawdown = "#f87171"

	chartWidthPx  = 1400
	chartHeightPx = 480
)

// WriteEquityChart renders the equity curve, a buy-and-hold reference and
// the running drawdown of one result into a standalone HTML page.
func WriteEquityChart(path string, res *types.BacktestResult) error {
	html, err := RenderEquityChart(res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return nil
}

func RenderEquityChart(res *types.BacktestResult) ([]byte, error) {
	if len(res.EquityCurve) == 0 {
		return nil, fmt.Errorf("no equity curve to chart for %s", res.StrategyName)
	}

	xAxis := make([]string, len(res.EquityCurve))
	for i, p := range res.EquityCurve {
		xAxis[i] = p.Time.Format(timeLayout)
	}

	page := components.NewPage()
	page.SetPageTitle(fmt.Sprintf("%s %s", res.StrategyName, res.Ticker))
	page.AddCharts(equityLine(res, xAxis), drawdownLine(res, xAxis))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func baseOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  echartstypes.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", chartHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	}
}

func equityLine(res *types.BacktestResult, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(baseOpts(
		fmt.Sprintf("%s %s/%s", res.StrategyName, res.Ticker, res.Interval),
		fmt.Sprintf("%s  return %s  sharpe %s", res.Params.Key(), pct(res.Metrics.TotalReturn), num(res.Metrics.SharpeRatio)),
	)...)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	equity := make([]opts.LineData, len(res.EquityCurve))
	for i, p := range res.EquityCurve {
		equity[i] = opts.LineData{Value: p.TotalEquity.InexactFloat64()}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("Equity", equity, charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}))
	line.AddSeries("Buy & hold", holdLine(res), charts.WithLineStyleOpts(opts.LineStyle{Color: colorHold, Width: 1}))
	return line
}

// holdLine scales the initial cash by the buy-and-hold return at each point,
// interpolated linearly since only the end-to-end figure is stored.
func holdLine(res *types.BacktestResult) []opts.LineData {
	n := len(res.EquityCurve)
	out := make([]opts.LineData, n)
	initial := res.InitialCash.InexactFloat64()
	for i := range out {
		frac := 1.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		out[i] = opts.LineData{Value: initial * (1 + res.BuyAndHoldReturn*frac)}
	}
	return out
}

func drawdownLine(res *types.BacktestResult, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(baseOpts("Drawdown", fmt.Sprintf("max %s", pct(res.Metrics.MaxDrawdown)))...)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorDrawdown, Opacity: opts.Float(0.3)}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("Drawdown %", DrawdownSeries(res.EquityCurve), charts.WithLineStyleOpts(opts.LineStyle{Color: colorDrawdown}))
	return line
}

// DrawdownSeries is the percentage distance of each point below the running peak.
func DrawdownSeries(curve []types.EquityPoint) []opts.LineData {
	out := make([]opts.LineData, len(curve))
	peak := decimal.Zero
	hundred := decimal.NewFromInt(100)
	for i, p := range curve {
		if p.TotalEquity.GreaterThan(peak) {
			peak = p.TotalEquity
		}
		dd := decimal.Zero
		if peak.IsPositive() {
			dd = p.TotalEquity.Sub(peak).Div(peak).Mul(hundred)
		}
		out[i] = opts.LineData{Value: dd.Round(4).InexactFloat64()}
	}
	return out
}
