// Package indicators computes derived series from a PriceSeries. All
// functions are pure; results are aligned to the bar index of the input.
package indicators

import (
	"stratlab/internal/logging"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

var smaLog = logging.New("sma")

// Series holds one value per bar. Valid is false where the indicator is not
// yet defined (warm-up).
type Series []decimal.NullDecimal

// At returns the value at i and whether it is defined.
func (s Series) At(i int) (decimal.Decimal, bool) {
	if i < 0 || i >= len(s) {
		return decimal.Zero, false
	}
	return s[i].Decimal, s[i].Valid
}

// SMA is the mean close over the trailing period bars, defined from index
// period-1 onwards.
func SMA(series *types.PriceSeries, period int) (Series, error) {
	if period < 1 {
		return nil, types.InvalidConfig("period", "must be >= 1, got %d", period)
	}
	if period > series.Len() {
		return nil, types.InsufficientData("period",
			"SMA(%d) needs %d bars, series has %d", period, period, series.Len())
	}

	closes := series.Closes()
	out := make(Series, len(closes))
	divisor := decimal.NewFromInt(int64(period))
	sum := decimal.Zero
	for i, c := range closes {
		sum = sum.Add(c)
		if i >= period {
			sum = sum.Sub(closes[i-period])
		}
		if i < period-1 {
			continue
		}
		out[i] = decimal.NullDecimal{Decimal: sum.Div(divisor), Valid: true}
	}

	smaLog.Debug("SMA computed", "symbol", series.Symbol(), "period", period, "bars", len(out))
	return out, nil
}
