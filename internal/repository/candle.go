package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stratlab/types"

	"github.com/jackc/pgx/v5"
)

var bucketToInterval = map[types.Interval]string{
	types.OneMinute:      "1 minute",
	types.ThreeMinutes:   "3 minutes",
	types.FiveMinutes:    "5 minutes",
	types.FifteenMinutes: "15 minutes",
	types.ThirtyMinutes:  "30 minutes",
	types.Hour:           "1 hour",
	types.TwoHours:       "2 hours",
	types.FourHours:      "4 hours",
	types.Day:            "1 day",
	types.Week:           "1 week",
}

// GetAggregates returns the candles of one asset bucketed to interval, in
// time order.
func (db *Database) GetAggregates(ctx context.Context, assetId int, interval types.Interval, start, end time.Time) ([]types.Bar, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, fmt.Errorf("%q %w", interval, ErrIntervalNotSupported)
	}
	args := GetAggregatesParams{
		TimeBucket: bucket,
		AssetID:    int32(assetId),
		Starttime:  &start,
	}
	// zero end runs to the last stored candle
	if !end.IsZero() {
		args.Endtime = &end
	}
	candles, err := db.candles.GetAggregates(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	return convertCandles(candles), nil
}

// LoadBars builds the price series of ticker between start and end.
func (db *Database) LoadBars(ctx context.Context, ticker string, interval types.Interval, start, end time.Time) (*types.PriceSeries, error) {
	asset, err := db.GetAssetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	bars, err := db.GetAggregates(ctx, asset.Id, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w", ticker, err)
	}
	return types.NewPriceSeries(asset.Ticker, interval, types.SortBars(bars))
}

func convertCandles(candleDAOs []GetAggregatesRow) []types.Bar {
	bars := make([]types.Bar, 0, len(candleDAOs))
	for _, dao := range candleDAOs {
		if dao.Bucket == nil {
			continue
		}
		bars = append(bars, types.Bar{
			Timestamp: *dao.Bucket,
			Open:      dao.Open,
			High:      dao.High,
			Low:       dao.Low,
			Close:     dao.Close,
			Volume:    dao.Volume.IntPart(),
		})
	}
	return bars
}
