package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"stratlab/types"
)

// SaveResult stores a finished run in backtest_results, creating or updating
// its strategies row by name. It returns the new result id.
func (db *Database) SaveResult(ctx context.Context, rec types.StoredResult) (int64, error) {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return 0, fmt.Errorf("encode parameters: %w", err)
	}
	trades, err := json.Marshal(rec.Trades)
	if err != nil {
		return 0, fmt.Errorf("encode trades: %w", err)
	}

	strategyID, err := db.results.UpsertStrategy(ctx, UpsertStrategyParams{
		Name:       rec.StrategyName,
		Type:       rec.StrategyType,
		Parameters: params,
	})
	if err != nil {
		return 0, fmt.Errorf("upsert strategy %q: %w", rec.StrategyName, err)
	}

	id, _, err := db.results.InsertBacktestResult(ctx, InsertBacktestResultParams{
		StrategyID:     strategyID,
		Symbol:         rec.Symbol,
		StartDate:      rec.StartDate,
		EndDate:        rec.EndDate,
		InitialCapital: rec.InitialCapital,
		FinalCapital:   rec.FinalCapital,
		TotalReturn:    rec.TotalReturn,
		SharpeRatio:    rec.SharpeRatio,
		MaxDrawdown:    rec.MaxDrawdown,
		WinRate:        rec.WinRate,
		TotalTrades:    int32(rec.TotalTrades),
		Trades:         trades,
	})
	if err != nil {
		return 0, fmt.Errorf("insert backtest result: %w", err)
	}
	return int64(id), nil
}

// ListResults returns the most recent runs, newest first. The table keeps
// no equity curve, so EquityCurve is always empty.
func (db *Database) ListResults(ctx context.Context, limit int) ([]types.StoredResult, error) {
	rows, err := db.results.ListBacktestResults(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	out := make([]types.StoredResult, 0, len(rows))
	for _, row := range rows {
		rec := types.StoredResult{
			ID:           int64(row.ID),
			StrategyType: row.StrategyType,
			BacktestResult: types.BacktestResult{
				StrategyName:   row.StrategyName,
				Symbol:         row.Symbol,
				StartDate:      row.StartDate,
				EndDate:        row.EndDate,
				InitialCapital: row.InitialCapital,
				FinalCapital:   row.FinalCapital,
				TotalReturn:    row.TotalReturn,
				SharpeRatio:    row.SharpeRatio,
				MaxDrawdown:    row.MaxDrawdown,
				WinRate:        row.WinRate,
				TotalTrades:    int(row.TotalTrades),
				EquityCurve:    []types.EquityPoint{},
			},
		}
		if row.CreatedAt != nil {
			rec.CreatedAt = *row.CreatedAt
		}
		if len(row.Parameters) > 0 {
			if err := json.Unmarshal(row.Parameters, &rec.Parameters); err != nil {
				return nil, fmt.Errorf("decode parameters of result %d: %w", row.ID, err)
			}
		}
		rec.Trades = []types.Trade{}
		if len(row.Trades) > 0 {
			if err := json.Unmarshal(row.Trades, &rec.Trades); err != nil {
				return nil, fmt.Errorf("decode trades of result %d: %w", row.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
