package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stratlab/types"

	"github.com/shopspring/decimal"
)

func TestParquetSource_RoundTrip(t *testing.T) {
	src := NewParquetSource(t.TempDir())
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var bars []types.Bar
	for i := 0; i < 10; i++ {
		price := decimal.NewFromFloat(100.25 + float64(i))
		bars = append(bars, types.Bar{
			Timestamp: day.AddDate(0, 0, i),
			Open:      price,
			High:      price.Add(decimal.NewFromInt(1)),
			Low:       price.Sub(decimal.NewFromInt(1)),
			Close:     price,
			Volume:    int64(1000 * (i + 1)),
		})
	}
	if err := src.WriteBars("spy", types.Day, bars); err != nil {
		t.Fatalf("WriteBars() error = %v", err)
	}

	series, err := src.LoadBars(context.Background(), "SPY", types.Day, day.AddDate(0, 0, 2), day.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("LoadBars() error = %v", err)
	}
	if series.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", series.Len())
	}
	if series.Symbol() != "SPY" {
		t.Errorf("Symbol() = %s, want SPY", series.Symbol())
	}
	first := series.Bar(0)
	if !first.Timestamp.Equal(day.AddDate(0, 0, 2)) || !first.Close.Equal(decimal.RequireFromString("102.25")) || first.Volume != 3000 {
		t.Errorf("first bar = %+v", first)
	}
}

func TestParquetSource_Errors(t *testing.T) {
	src := NewParquetSource(t.TempDir())
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := src.LoadBars(context.Background(), "MISSING", types.Day, day, day.AddDate(1, 0, 0)); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("LoadBars() missing file error = %v, want %v", err, ErrAssetNotFound)
	}

	bar := types.Bar{Timestamp: day, Open: decimal.NewFromInt(1), High: decimal.NewFromInt(1), Low: decimal.NewFromInt(1), Close: decimal.NewFromInt(1)}
	if err := src.WriteBars("ONE", types.Day, []types.Bar{bar}); err != nil {
		t.Fatalf("WriteBars() error = %v", err)
	}
	if _, err := src.LoadBars(context.Background(), "ONE", types.Day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 9)); !errors.Is(err, ErrNoCandles) {
		t.Errorf("LoadBars() empty range error = %v, want %v", err, ErrNoCandles)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.LoadBars(ctx, "ONE", types.Day, day, day); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadBars() cancelled error = %v", err)
	}
}
