package engine

import (
	"context"
	"fmt"
	"time"

	"quantlab/types"
)

// DataFeed selects which candle series to fetch. Fetching is the store's job;
// the feed only validates what comes back.
type DataFeed struct {
	Ticker   string
	Interval types.Interval
	Start    time.Time
	End      time.Time
}

func NewDataFeed(ticker string, interval types.Interval, start, end time.Time) *DataFeed {
	return &DataFeed{
		Ticker:   ticker,
		Interval: interval,
		Start:    start,
		End:      end,
	}
}

// NewDataFeedForDays covers the last n days up to end.
func NewDataFeedForDays(ticker string, interval types.Interval, days int, end time.Time) *DataFeed {
	return NewDataFeed(ticker, interval, end.AddDate(0, 0, -days), end)
}

func (df *DataFeed) Load(ctx context.Context, db dataStore) (types.Series, error) {
	asset, err := db.GetAssetByTicker(ctx, df.Ticker)
	if err != nil {
		return types.Series{}, fmt.Errorf("load asset %s: %w", df.Ticker, err)
	}
	candles, err := db.GetCandles(ctx, asset, df.Interval, df.Start, df.End)
	if err != nil {
		return types.Series{}, fmt.Errorf("load candles %s/%s: %w", df.Ticker, df.Interval, err)
	}
	series := types.NewSeries(df.Ticker, df.Interval, candles)
	if err := ValidateSeries(series); err != nil {
		return types.Series{}, err
	}
	return series, nil
}

// ValidateSeries rejects empty series, intervals missing from the
// annualization table and timestamps that are not strictly ascending.
// Duplicates count as unsorted.
func ValidateSeries(series types.Series) error {
	if len(series.Candles) == 0 {
		return ErrEmptySeries
	}
	if _, ok := series.Interval.AnnualizationFactor(); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownInterval, series.Interval)
	}
	for i := 1; i < len(series.Candles); i++ {
		prev, cur := series.Candles[i-1].Timestamp, series.Candles[i].Timestamp
		if !cur.After(prev) {
			return fmt.Errorf("%w: index %d at %s follows %s", ErrUnsortedSeries, i, cur.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
	}
	return nil
}

func validateSignals(candles []types.Candle, signals []types.Signal) error {
	if len(signals) != len(candles) {
		return fmt.Errorf("%w: %d signals for %d candles", ErrSignalMisaligned, len(signals), len(candles))
	}
	for i, s := range signals {
		if !s.Valid() {
			return fmt.Errorf("%w: %d at index %d", ErrUnknownSignal, int8(s), i)
		}
	}
	return nil
}
