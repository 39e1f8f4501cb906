package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"quantlab/types"

	"github.com/gocarina/gocsv"
)

type tradeRow struct {
	EntryTime  string `csv:"entry_time"`
	ExitTime   string `csv:"exit_time"`
	Quantity   string `csv:"quantity"`
	EntryPrice string `csv:"entry_price"`
	ExitPrice  string `csv:"exit_price"`
	GrossPnL   string `csv:"gross_pnl"`
	FeesPaid   string `csv:"fees_paid"`
	NetPnL     string `csv:"net_pnl"`
	ReturnPct  string `csv:"return_pct"`
	ExitReason string `csv:"exit_reason"`
}

type equityRow struct {
	Time          string `csv:"time"`
	Cash          string `csv:"cash"`
	PositionValue string `csv:"position_value"`
	TotalEquity   string `csv:"total_equity"`
}

// WriteTradesCSV writes one row per closed trade. Decimals keep their full precision.
func WriteTradesCSV(path string, trades []types.Trade) error {
	rows := make([]*tradeRow, len(trades))
	for i, t := range trades {
		rows[i] = &tradeRow{
			EntryTime:  t.EntryTime.Format(time.RFC3339),
			ExitTime:   t.ExitTime.Format(time.RFC3339),
			Quantity:   t.Quantity.String(),
			EntryPrice: t.EntryPrice.String(),
			ExitPrice:  t.ExitPrice.String(),
			GrossPnL:   t.GrossPnL.String(),
			FeesPaid:   t.FeesPaid.String(),
			NetPnL:     t.NetPnL.String(),
			ReturnPct:  t.ReturnPct.String(),
			ExitReason: string(t.ExitReason),
		}
	}
	return writeCSV(path, &rows)
}

func WriteEquityCSV(path string, curve []types.EquityPoint) error {
	rows := make([]*equityRow, len(curve))
	for i, p := range curve {
		rows[i] = &equityRow{
			Time:          p.Time.Format(time.RFC3339),
			Cash:          p.Cash.String(),
			PositionValue: p.PositionValue.String(),
			TotalEquity:   p.TotalEquity.String(),
		}
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := marshalAndClose(rows, file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// marshalAndClose always closes w. A close error is returned when the marshal itself succeeded.
func marshalAndClose(rows any, w io.WriteCloser) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// WriteResult exports trades, equity and, when chart is set, the HTML equity
// chart of one result into dir. It returns the files written.
func WriteResult(dir string, res *types.BacktestResult, chart bool) ([]string, error) {
	base := filepath.Join(dir, fileStem(res))
	written := make([]string, 0, 3)

	tradesPath := base + "_trades.csv"
	if err := WriteTradesCSV(tradesPath, res.Trades); err != nil {
		return written, err
	}
	written = append(written, tradesPath)

	equityPath := base + "_equity.csv"
	if err := WriteEquityCSV(equityPath, res.EquityCurve); err != nil {
		return written, err
	}
	written = append(written, equityPath)

	if chart {
		chartPath := base + "_equity.html"
		if err := WriteEquityChart(chartPath, res); err != nil {
			return written, err
		}
		written = append(written, chartPath)
	}
	return written, nil
}

func fileStem(res *types.BacktestResult) string {
	id := res.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s_%s", res.StrategyName, res.Ticker, res.Interval, id)
}
