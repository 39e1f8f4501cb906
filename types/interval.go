package types

import (
	"fmt"
	"strings"
)

type Interval string

const (
	OneMinute      Interval = "1"
	ThreeMinutes   Interval = "3"
	FiveMinutes    Interval = "5"
	FifteenMinutes Interval = "15"
	ThirtyMinutes  Interval = "30"
	Hour           Interval = "60"
	TwoHours       Interval = "120"
	FourHours      Interval = "240"
	Day            Interval = "D"
	Week           Interval = "W"
	Month          Interval = "M"
)

// PeriodsPerYear is the annualization factor per bar interval. Crypto markets
// trade every day, so intraday factors scale from 365 days.
var PeriodsPerYear = map[Interval]float64{
	OneMinute:      365 * 24 * 60,
	ThreeMinutes:   365 * 24 * 20,
	FiveMinutes:    365 * 24 * 12,
	FifteenMinutes: 365 * 24 * 4,
	ThirtyMinutes:  365 * 24 * 2,
	Hour:           365 * 24,
	TwoHours:       365 * 12,
	FourHours:      365 * 6,
	Day:            365,
	Week:           52,
	Month:          12,
}

var ConvertInterval = map[string]Interval{
	"1":   OneMinute,
	"3":   ThreeMinutes,
	"5":   FiveMinutes,
	"15":  FifteenMinutes,
	"30":  ThirtyMinutes,
	"60":  Hour,
	"120": TwoHours,
	"240": FourHours,
	"D":   Day,
	"W":   Week,
	"M":   Month,
	// exchange style aliases
	"1m":  OneMinute,
	"3m":  ThreeMinutes,
	"5m":  FiveMinutes,
	"15m": FifteenMinutes,
	"30m": ThirtyMinutes,
	"1h":  Hour,
	"2h":  TwoHours,
	"4h":  FourHours,
	"1d":  Day,
	"1w":  Week,
	"1M":  Month,
}

// ParseInterval accepts both the native keys ("60", "D") and exchange aliases ("1h", "1d").
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if iv, ok := ConvertInterval[s]; ok {
		return iv, nil
	}
	if iv, ok := ConvertInterval[strings.ToUpper(s)]; ok {
		return iv, nil
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// AnnualizationFactor returns the periods per year for the interval. ok is false
// for intervals missing from PeriodsPerYear.
func (i Interval) AnnualizationFactor() (float64, bool) {
	f, ok := PeriodsPerYear[i]
	return f, ok
}
