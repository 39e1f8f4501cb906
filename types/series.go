package types

import (
	"slices"
	"time"
)

// Series is a single instrument's candle history in ascending time order.
type Series struct {
	Ticker   string   `json:"ticker"`
	Interval Interval `json:"interval"`
	Candles  []Candle `json:"candles"`
}

func NewSeries(ticker string, interval Interval, candles []Candle) Series {
	return Series{
		Ticker:   ticker,
		Interval: interval,
		Candles:  candles,
	}
}

func (s Series) Len() int {
	return len(s.Candles)
}

func (s Series) Start() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[0].Timestamp
}

func (s Series) End() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[len(s.Candles)-1].Timestamp
}

// Slice returns an independent copy of the candles in [r.Start, r.End).
// Parallel runs each get their own backing array.
func (s Series) Slice(r Range) Series {
	return Series{
		Ticker:   s.Ticker,
		Interval: s.Interval,
		Candles:  slices.Clone(s.Candles[r.Start:r.End]),
	}
}

// Range is a half-open index range [Start, End) over a Series.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Last is the highest index contained in the range.
func (r Range) Last() int {
	return r.End - 1
}

func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}
