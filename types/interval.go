package types

import "time"

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
}

// tradingMinutesPerDay is one regular US equity session (09:30-16:00).
const tradingMinutesPerDay = 390.0

// PeriodsPerYear is the number of bars of the given interval in one trading
// year. Intraday intervals are counted within regular session hours.
var PeriodsPerYear = map[Interval]float64{
	OneMinute:      252 * tradingMinutesPerDay,
	ThreeMinutes:   252 * tradingMinutesPerDay / 3,
	FiveMinutes:    252 * tradingMinutesPerDay / 5,
	FifteenMinutes: 252 * tradingMinutesPerDay / 15,
	ThirtyMinutes:  252 * tradingMinutesPerDay / 30,
	Hour:           252 * tradingMinutesPerDay / 60,
	TwoHours:       252 * tradingMinutesPerDay / 120,
	FourHours:      252 * tradingMinutesPerDay / 240,
	Day:            252,
	Week:           52,
	Month:          12,
}

// PeriodsPerYearForSpacing infers the annualization factor from the typical
// distance between two bars. Weekends and holidays make daily spacing uneven,
// so callers should pass a median rather than a mean.
func PeriodsPerYearForSpacing(spacing time.Duration) float64 {
	switch {
	case spacing <= 0:
		return 252
	case spacing >= 28*24*time.Hour:
		return 12
	case spacing >= 7*24*time.Hour:
		return 52
	case spacing >= 20*time.Hour:
		return 252
	default:
		return 252 * tradingMinutesPerDay / spacing.Minutes()
	}
}
