package repository

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantlab/types"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// csvCandle is one row of a candle file with a header like
// timestamp,open,high,low,close,volume. Volume may be omitted.
type csvCandle struct {
	Timestamp csvTime         `csv:"timestamp"`
	Open      decimal.Decimal `csv:"open"`
	High      decimal.Decimal `csv:"high"`
	Low       decimal.Decimal `csv:"low"`
	Close     decimal.Decimal `csv:"close"`
	Volume    decimal.Decimal `csv:"volume,omitempty"`
}

var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// csvTime accepts RFC3339 and common date layouts, or unix epochs in seconds
// or milliseconds.
type csvTime struct {
	time.Time
}

func (t *csvTime) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		if epoch > 1e12 {
			t.Time = time.UnixMilli(epoch).UTC()
		} else {
			t.Time = time.Unix(epoch, 0).UTC()
		}
		return nil
	}
	for _, layout := range csvTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// LoadCSVFile reads a candle file from disk. See LoadCSV.
func LoadCSVFile(path, ticker string, interval types.Interval) (types.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadCSV(f, ticker, interval)
}

// LoadCSV parses candles and sorts them by timestamp. Duplicate timestamps are
// kept so series validation can reject them.
func LoadCSV(r io.Reader, ticker string, interval types.Interval) (types.Series, error) {
	var rows []csvCandle
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return types.Series{}, ErrNoCandles
		}
		return types.Series{}, fmt.Errorf("parse candles: %w", err)
	}
	if len(rows) == 0 {
		return types.Series{}, ErrNoCandles
	}

	candles := make([]types.Candle, len(rows))
	for i, row := range rows {
		candles[i] = types.Candle{
			Ticker:    ticker,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
			Interval:  interval,
			Timestamp: row.Timestamp.Time,
		}
	}
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return types.NewSeries(ticker, interval, candles), nil
}
