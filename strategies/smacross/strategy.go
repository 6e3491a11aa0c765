// Package smacross implements the moving average crossover strategy: go long
// on a golden cross of the short SMA over the long SMA, go flat on the death
// cross.
package smacross

import (
	"fmt"
	"iter"

	"stratlab/internal/indicators"
	"stratlab/internal/logging"
	"stratlab/types"

	"golang.org/x/sync/errgroup"
)

const Tag = "sma"

var log = logging.New("signals")

type Strategy struct {
	Label       string
	ShortPeriod int
	LongPeriod  int
}

func New(label string, shortPeriod, longPeriod int) *Strategy {
	return &Strategy{
		Label:       label,
		ShortPeriod: shortPeriod,
		LongPeriod:  longPeriod,
	}
}

func (s *Strategy) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("SMA Crossover (%d/%d)", s.ShortPeriod, s.LongPeriod)
}

func (s *Strategy) Type() string { return Tag }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"shortPeriod": s.ShortPeriod,
		"longPeriod":  s.LongPeriod,
	}
}

// Lookback is the long period: no crossover exists before both SMAs are
// defined.
func (s *Strategy) Lookback() int { return s.LongPeriod }

func (s *Strategy) Validate() error {
	if s.ShortPeriod < 1 {
		return types.InvalidConfig("shortPeriod", "must be >= 1, got %d", s.ShortPeriod)
	}
	if s.LongPeriod < 1 {
		return types.InvalidConfig("longPeriod", "must be >= 1, got %d", s.LongPeriod)
	}
	if s.ShortPeriod >= s.LongPeriod {
		return types.InvalidConfig("shortPeriod", "must be < longPeriod (%d), got %d", s.LongPeriod, s.ShortPeriod)
	}
	return nil
}

// Signals computes both SMAs up front and then walks them bar by bar. A
// signal fires only on a strict sign change of short-long between two
// consecutive defined bars.
func (s *Strategy) Signals(series *types.PriceSeries, cache *indicators.Cache) (iter.Seq[types.Signal], error) {
	var short, long indicators.Series
	var g errgroup.Group
	g.Go(func() error {
		var err error
		short, err = cache.SMA(series, s.ShortPeriod)
		return err
	})
	g.Go(func() error {
		var err error
		long, err = cache.SMA(series, s.LongPeriod)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return func(yield func(types.Signal) bool) {
		hasPrev := false
		prevSign := 0
		for i := 0; i < series.Len(); i++ {
			sv, okShort := short.At(i)
			lv, okLong := long.At(i)
			if !okShort || !okLong {
				continue
			}
			sign := sv.Cmp(lv)
			if !hasPrev {
				hasPrev = true
				prevSign = sign
				continue
			}

			bar := series.Bar(i)
			var signal *types.Signal
			switch {
			case prevSign <= 0 && sign > 0:
				sig := types.NewSignal(types.SignalEnter, bar.Close,
					fmt.Sprintf("SMA(%d) crossed above SMA(%d)", s.ShortPeriod, s.LongPeriod), bar.Timestamp)
				signal = &sig
			case prevSign >= 0 && sign < 0:
				sig := types.NewSignal(types.SignalExit, bar.Close,
					fmt.Sprintf("SMA(%d) crossed below SMA(%d)", s.ShortPeriod, s.LongPeriod), bar.Timestamp)
				signal = &sig
			}
			prevSign = sign

			if signal == nil {
				continue
			}
			log.Debug("signal", "strategy", Tag, "kind", signal.Kind, "time", signal.Timestamp, "short", sv, "long", lv)
			if !yield(*signal) {
				return
			}
		}
	}, nil
}
