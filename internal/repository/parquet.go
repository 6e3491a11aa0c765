package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stratlab/types"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
)

// BarRecord is the Parquet schema for bar data.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// ParquetSource reads bars from Parquet files on disk, one file per symbol
// and interval: <dir>/<INTERVAL>/<SYMBOL>.parquet.
type ParquetSource struct {
	Dir string
}

func NewParquetSource(dir string) *ParquetSource {
	return &ParquetSource{Dir: dir}
}

func (s *ParquetSource) path(symbol string, interval types.Interval) string {
	return filepath.Join(s.Dir, string(interval), strings.ToUpper(symbol)+".parquet")
}

// LoadBars reads the bars of symbol with start <= timestamp <= end.
func (s *ParquetSource) LoadBars(ctx context.Context, symbol string, interval types.Interval, start, end time.Time) (*types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.path(symbol, interval)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ticker %s %w", symbol, ErrAssetNotFound)
	}
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	bars := make([]types.Bar, 0, len(records))
	for _, r := range records {
		ts := time.UnixMilli(r.Timestamp).UTC()
		if ts.Before(start) || (!end.IsZero() && ts.After(end)) {
			continue
		}
		bars = append(bars, types.Bar{
			Timestamp: ts,
			Open:      decimal.NewFromFloat(r.Open),
			High:      decimal.NewFromFloat(r.High),
			Low:       decimal.NewFromFloat(r.Low),
			Close:     decimal.NewFromFloat(r.Close),
			Volume:    r.Volume,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", symbol, ErrNoCandles)
	}
	return types.NewPriceSeries(strings.ToUpper(symbol), interval, types.SortBars(bars))
}

// WriteBars replaces the file of symbol with bars.
func (s *ParquetSource) WriteBars(symbol string, interval types.Interval, bars []types.Bar) error {
	records := make([]BarRecord, len(bars))
	for i, b := range bars {
		records[i] = BarRecord{
			Symbol:    strings.ToUpper(symbol),
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open.InexactFloat64(),
			High:      b.High.InexactFloat64(),
			Low:       b.Low.InexactFloat64(),
			Close:     b.Close.InexactFloat64(),
			Volume:    b.Volume,
		}
	}

	path := s.path(symbol, interval)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
