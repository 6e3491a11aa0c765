package types

import "time"

// StoredResult is a BacktestResult as kept by a result store, together with
// the strategy configuration that produced it.
type StoredResult struct {
	ID           int64          `json:"id"`
	StrategyType string         `json:"strategyType"`
	Parameters   map[string]any `json:"parameters"`
	CreatedAt    time.Time      `json:"createdAt"`
	BacktestResult
}
