// Package rsithreshold implements the RSI threshold strategy. It waits for
// RSI to recover from below the oversold line before entering and for it to
// fall back from above the overbought line before exiting.
package rsithreshold

import (
	"fmt"
	"iter"

	"stratlab/internal/indicators"
	"stratlab/internal/logging"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

const Tag = "rsi"

var log = logging.New("signals")

var hundred = decimal.NewFromInt(100)

type Strategy struct {
	Label      string
	Period     int
	Oversold   decimal.Decimal
	Overbought decimal.Decimal
}

func New(label string, period int, oversold, overbought decimal.Decimal) *Strategy {
	return &Strategy{
		Label:      label,
		Period:     period,
		Oversold:   oversold,
		Overbought: overbought,
	}
}

func (s *Strategy) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("RSI (%d, %s/%s)", s.Period, s.Oversold, s.Overbought)
}

func (s *Strategy) Type() string { return Tag }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"period":     s.Period,
		"oversold":   s.Oversold.InexactFloat64(),
		"overbought": s.Overbought.InexactFloat64(),
	}
}

// Lookback is period deltas plus the bar they start from.
func (s *Strategy) Lookback() int { return s.Period + 1 }

func (s *Strategy) Validate() error {
	if s.Period < 1 {
		return types.InvalidConfig("period", "must be >= 1, got %d", s.Period)
	}
	if s.Oversold.IsNegative() || s.Oversold.GreaterThan(hundred) {
		return types.InvalidConfig("oversold", "must be within 0..100, got %s", s.Oversold)
	}
	if s.Overbought.IsNegative() || s.Overbought.GreaterThan(hundred) {
		return types.InvalidConfig("overbought", "must be within 0..100, got %s", s.Overbought)
	}
	if !s.Oversold.LessThan(s.Overbought) {
		return types.InvalidConfig("oversold", "must be < overbought (%s), got %s", s.Overbought, s.Oversold)
	}
	return nil
}

// Signals emits Enter on the first bar whose RSI is above oversold after a
// bar below it, and Exit on the first bar below overbought after a bar above
// it. Bars exactly on a line neither arm nor fire.
func (s *Strategy) Signals(series *types.PriceSeries, cache *indicators.Cache) (iter.Seq[types.Signal], error) {
	rsi, err := cache.RSI(series, s.Period)
	if err != nil {
		return nil, err
	}

	return func(yield func(types.Signal) bool) {
		belowOversold := false
		aboveOverbought := false
		for i := 0; i < series.Len(); i++ {
			v, ok := rsi.At(i)
			if !ok {
				continue
			}

			bar := series.Bar(i)
			var signals []types.Signal
			if v.LessThan(s.Oversold) {
				belowOversold = true
			} else if belowOversold && v.GreaterThan(s.Oversold) {
				belowOversold = false
				signals = append(signals, types.NewSignal(types.SignalEnter, bar.Close,
					fmt.Sprintf("RSI(%d) recovered above %s", s.Period, s.Oversold), bar.Timestamp))
			}
			if v.GreaterThan(s.Overbought) {
				aboveOverbought = true
			} else if aboveOverbought && v.LessThan(s.Overbought) {
				aboveOverbought = false
				signals = append(signals, types.NewSignal(types.SignalExit, bar.Close,
					fmt.Sprintf("RSI(%d) fell below %s", s.Period, s.Overbought), bar.Timestamp))
			}

			for _, signal := range signals {
				log.Debug("signal", "strategy", Tag, "kind", signal.Kind, "time", signal.Timestamp, "rsi", v)
				if !yield(signal) {
					return
				}
			}
		}
	}, nil
}
