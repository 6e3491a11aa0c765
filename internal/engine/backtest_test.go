package engine

import (
	"errors"
	"iter"
	"slices"
	"testing"
	"time"

	"stratlab/internal/indicators"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

var day0 = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func mockSeries(t *testing.T, closes ...string) *types.PriceSeries {
	t.Helper()
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		d := decimal.RequireFromString(c)
		bars[i] = types.Bar{Timestamp: day0.AddDate(0, 0, i), Open: d, High: d, Low: d, Close: d, Volume: 100}
	}
	series, err := types.NewPriceSeries("AAPL", types.Day, bars)
	if err != nil {
		t.Fatalf("NewPriceSeries() error = %v", err)
	}
	return series
}

// scriptedStrategy emits fixed signals at bar indices.
type scriptedStrategy struct {
	lookback int
	enters   []int
	exits    []int
	raw      []types.Signal
	err      error
}

func (s *scriptedStrategy) Name() string           { return "scripted" }
func (s *scriptedStrategy) Type() string           { return "scripted" }
func (s *scriptedStrategy) Params() map[string]any { return nil }
func (s *scriptedStrategy) Lookback() int          { return s.lookback }
func (s *scriptedStrategy) Validate() error        { return s.err }

func (s *scriptedStrategy) Signals(series *types.PriceSeries, _ *indicators.Cache) (iter.Seq[types.Signal], error) {
	if s.raw != nil {
		return slices.Values(s.raw), nil
	}
	return func(yield func(types.Signal) bool) {
		for i := 0; i < series.Len(); i++ {
			bar := series.Bar(i)
			if slices.Contains(s.enters, i) {
				if !yield(types.NewSignal(types.SignalEnter, bar.Close, "scripted", bar.Timestamp)) {
					return
				}
			}
			if slices.Contains(s.exits, i) {
				if !yield(types.NewSignal(types.SignalExit, bar.Close, "scripted", bar.Timestamp)) {
					return
				}
			}
		}
	}, nil
}

func runScripted(t *testing.T, series *types.PriceSeries, strat *scriptedStrategy, capital string) *types.BacktestResult {
	t.Helper()
	result, err := Run(series, strat, NewCapitalConfig(decimal.RequireFromString(capital)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

func TestBacktester_EquityPointPerBar(t *testing.T) {
	series := mockSeries(t, "10", "11", "12", "11", "13", "9")
	result := runScripted(t, series, &scriptedStrategy{enters: []int{1}, exits: []int{3}}, "100")

	if len(result.EquityCurve) != series.Len() {
		t.Fatalf("len(EquityCurve) = %d, want %d", len(result.EquityCurve), series.Len())
	}
	// 9 shares at 11, cash 1; sold at 11 on bar 3
	want := []string{"100", "100", "109", "100", "100", "100"}
	for i, w := range want {
		p := result.EquityCurve[i]
		if !p.Date.Equal(series.Bar(i).Timestamp) {
			t.Errorf("point %d date = %s, want %s", i, p.Date, series.Bar(i).Timestamp)
		}
		if !p.Value.Equal(decimal.RequireFromString(w)) {
			t.Errorf("point %d value = %s, want %s", i, p.Value, w)
		}
	}
	if !result.FinalCapital.Equal(result.EquityCurve[len(result.EquityCurve)-1].Value) {
		t.Errorf("FinalCapital = %s, last equity = %s", result.FinalCapital, result.EquityCurve[len(result.EquityCurve)-1].Value)
	}
}

func TestBacktester_IgnoresRedundantSignals(t *testing.T) {
	series := mockSeries(t, "10", "10", "20", "20", "10", "10")
	strat := &scriptedStrategy{enters: []int{0, 1, 2}, exits: []int{3, 4}}
	result := runScripted(t, series, strat, "100")

	if result.TotalTrades != 1 {
		t.Fatalf("TotalTrades = %d, want 1", result.TotalTrades)
	}
	tr := result.Trades[0]
	if !tr.EntryDate.Equal(series.Bar(0).Timestamp) || !tr.ExitDate.Equal(series.Bar(3).Timestamp) {
		t.Errorf("trade = %s..%s, want bars 0..3", tr.EntryDate, tr.ExitDate)
	}
	if tr.Quantity != 10 || !tr.Profit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("trade qty = %d profit = %s, want 10 and 100", tr.Quantity, tr.Profit)
	}
}

func TestBacktester_ExitWhileFlatIgnored(t *testing.T) {
	series := mockSeries(t, "10", "11", "12")
	result := runScripted(t, series, &scriptedStrategy{exits: []int{0, 1}}, "100")

	if result.TotalTrades != 0 {
		t.Errorf("TotalTrades = %d, want 0", result.TotalTrades)
	}
	if !result.FinalCapital.Equal(decimal.NewFromInt(100)) {
		t.Errorf("FinalCapital = %s, want 100", result.FinalCapital)
	}
}

func TestBacktester_EntrySkippedWhenCapitalBelowPrice(t *testing.T) {
	series := mockSeries(t, "500", "400", "50", "60")
	result := runScripted(t, series, &scriptedStrategy{enters: []int{0, 2}, exits: []int{3}}, "100")

	if result.TotalTrades != 1 {
		t.Fatalf("TotalTrades = %d, want 1", result.TotalTrades)
	}
	if !result.Trades[0].EntryDate.Equal(series.Bar(2).Timestamp) || result.Trades[0].Quantity != 2 {
		t.Errorf("trade = %+v, want entry at bar 2 with 2 shares", result.Trades[0])
	}
}

func TestBacktester_ForceClosesAtLastBar(t *testing.T) {
	series := mockSeries(t, "10", "12", "15")
	result := runScripted(t, series, &scriptedStrategy{enters: []int{1}}, "120")

	if result.TotalTrades != 1 {
		t.Fatalf("TotalTrades = %d, want 1", result.TotalTrades)
	}
	tr := result.Trades[0]
	if !tr.ExitDate.Equal(series.End()) || !tr.ExitPrice.Equal(decimal.NewFromInt(15)) {
		t.Errorf("exit = %s @ %s, want %s @ 15", tr.ExitDate, tr.ExitPrice, series.End())
	}
	if !result.FinalCapital.Equal(decimal.NewFromInt(150)) {
		t.Errorf("FinalCapital = %s, want 150", result.FinalCapital)
	}
}

func TestBacktester_EnterAndExitSameBar(t *testing.T) {
	series := mockSeries(t, "10", "12", "15")
	result := runScripted(t, series, &scriptedStrategy{enters: []int{1}, exits: []int{1}}, "120")

	if result.TotalTrades != 1 {
		t.Fatalf("TotalTrades = %d, want 1", result.TotalTrades)
	}
	if !result.Trades[0].Profit.IsZero() {
		t.Errorf("profit = %s, want 0", result.Trades[0].Profit)
	}
}

func TestBacktester_InvalidSignalStreams(t *testing.T) {
	series := mockSeries(t, "10", "11", "12")
	tests := []struct {
		name    string
		signals []types.Signal
	}{
		{
			"out of order",
			[]types.Signal{
				types.NewSignal(types.SignalEnter, decimal.NewFromInt(12), "", series.Bar(2).Timestamp),
				types.NewSignal(types.SignalExit, decimal.NewFromInt(11), "", series.Bar(1).Timestamp),
			},
		},
		{
			"between bars",
			[]types.Signal{types.NewSignal(types.SignalEnter, decimal.NewFromInt(10), "", day0.Add(time.Hour))},
		},
		{
			"after last bar",
			[]types.Signal{types.NewSignal(types.SignalEnter, decimal.NewFromInt(10), "", day0.AddDate(0, 0, 10))},
		},
		{
			"unknown kind",
			[]types.Signal{{Timestamp: day0, Kind: "HOLD"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(series, &scriptedStrategy{raw: tt.signals}, NewCapitalConfig(decimal.NewFromInt(100)))
			if !errors.Is(err, types.ErrInternal) {
				t.Fatalf("Run() error = %v, want %v", err, types.ErrInternal)
			}
			if result != nil {
				t.Errorf("Run() returned a partial result")
			}
		})
	}
}
