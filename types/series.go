package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSeries is an ordered, immutable run of bars for one symbol. Build it
// with NewPriceSeries; the zero value is not usable.
type PriceSeries struct {
	id       string
	symbol   string
	interval Interval
	bars     []Bar
}

// NewPriceSeries copies bars and checks that they form a valid series:
// non-empty, strictly increasing timestamps, positive prices, high >= low
// and non-negative volume.
func NewPriceSeries(symbol string, interval Interval, bars []Bar) (*PriceSeries, error) {
	if len(bars) == 0 {
		return nil, InsufficientData("series", "must contain at least one bar")
	}

	owned := make([]Bar, len(bars))
	copy(owned, bars)

	for i, bar := range owned {
		if i > 0 && !bar.Timestamp.After(owned[i-1].Timestamp) {
			return nil, InvalidConfig(fmt.Sprintf("bars[%d].timestamp", i),
				"must be strictly after %s", owned[i-1].Timestamp.Format(time.RFC3339))
		}
		if !bar.Close.IsPositive() {
			return nil, InvalidConfig(fmt.Sprintf("bars[%d].close", i), "must be > 0")
		}
		if !bar.Open.IsPositive() || !bar.High.IsPositive() || !bar.Low.IsPositive() {
			return nil, InvalidConfig(fmt.Sprintf("bars[%d]", i), "open, high and low must be > 0")
		}
		if bar.High.LessThan(bar.Low) {
			return nil, InvalidConfig(fmt.Sprintf("bars[%d].high", i), "must be >= low")
		}
		if bar.Volume < 0 {
			return nil, InvalidConfig(fmt.Sprintf("bars[%d].volume", i), "must be >= 0")
		}
	}

	return &PriceSeries{
		id:       fingerprint(symbol, interval, owned),
		symbol:   symbol,
		interval: interval,
		bars:     owned,
	}, nil
}

// SortBars orders bars by timestamp and drops later duplicates of the same
// timestamp. Data sources use it before handing bars to NewPriceSeries.
func SortBars(bars []Bar) []Bar {
	out := make([]Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	deduped := out[:0]
	for i, bar := range out {
		if i > 0 && bar.Timestamp.Equal(deduped[len(deduped)-1].Timestamp) {
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped
}

func (s *PriceSeries) ID() string         { return s.id }
func (s *PriceSeries) Symbol() string     { return s.symbol }
func (s *PriceSeries) Interval() Interval { return s.interval }
func (s *PriceSeries) Len() int           { return len(s.bars) }
func (s *PriceSeries) Bar(i int) Bar      { return s.bars[i] }
func (s *PriceSeries) Start() time.Time   { return s.bars[0].Timestamp }
func (s *PriceSeries) End() time.Time     { return s.bars[len(s.bars)-1].Timestamp }

// Closes returns a fresh slice of close prices.
func (s *PriceSeries) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.bars))
	for i, bar := range s.bars {
		out[i] = bar.Close
	}
	return out
}

// MedianSpacing is the median distance between consecutive bars, or zero for
// a single-bar series.
func (s *PriceSeries) MedianSpacing() time.Duration {
	if len(s.bars) < 2 {
		return 0
	}
	gaps := make([]time.Duration, 0, len(s.bars)-1)
	for i := 1; i < len(s.bars); i++ {
		gaps = append(gaps, s.bars[i].Timestamp.Sub(s.bars[i-1].Timestamp))
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps[len(gaps)/2]
}

// PeriodsPerYear is the annualization factor for this series.
func (s *PriceSeries) PeriodsPerYear() float64 {
	if p, ok := PeriodsPerYear[s.interval]; ok {
		return p
	}
	return PeriodsPerYearForSpacing(s.MedianSpacing())
}

func fingerprint(symbol string, interval Interval, bars []Bar) string {
	h := sha256.New()
	h.Write([]byte(symbol))
	h.Write([]byte{0})
	h.Write([]byte(interval))
	h.Write([]byte{0})
	var ts [8]byte
	for _, bar := range bars {
		binary.BigEndian.PutUint64(ts[:], uint64(bar.Timestamp.UnixNano()))
		h.Write(ts[:])
		h.Write([]byte(bar.Close.String()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
