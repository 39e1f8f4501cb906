package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantlab/types"

	"github.com/jackc/pgx/v5"
)

var bucketToInterval = map[types.Interval]string{
	types.OneMinute:      "1 minute",
	types.ThreeMinutes:   "3 minutes",
	types.FiveMinutes:    "5 minutes",
	types.FifteenMinutes: "15 minutes",
	types.ThirtyMinutes:  "30 minutes",
	types.Hour:           "1 hour",
	types.TwoHours:       "2 hours",
	types.FourHours:      "4 hours",
	types.Day:            "1 day",
	types.Week:           "1 week",
}

// GetCandles returns the asset's candles in [start, end), rolled up to interval, oldest first.
func (db *Database) GetCandles(ctx context.Context, asset *types.Asset, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntervalNotSupported, interval)
	}
	rows, err := db.candles.GetAggregates(ctx, aggregatesParams{
		TimeBucket: bucket,
		AssetID:    int32(asset.ID),
		StartTime:  start,
		EndTime:    end,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCandles
	}
	return convertCandles(rows, interval, asset.Ticker), nil
}

func convertCandles(rows []aggregateRow, interval types.Interval, ticker string) []types.Candle {
	candles := make([]types.Candle, 0, len(rows))
	for _, r := range rows {
		candles = append(candles, types.Candle{
			Ticker:    ticker,
			Open:      r.Open,
			Close:     r.Close,
			High:      r.High,
			Low:       r.Low,
			Volume:    r.Volume,
			Interval:  interval,
			Timestamp: r.Bucket,
		})
	}
	return candles
}
