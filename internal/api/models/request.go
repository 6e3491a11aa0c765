package models

import "github.com/shopspring/decimal"

// BacktestRequest is the body of POST /api/v1/backtest. Dates are YYYY-MM-DD;
// an empty end date runs to the last available bar.
type BacktestRequest struct {
	StrategyType   string          `json:"strategyType" binding:"required"`
	StrategyName   string          `json:"strategyName"`
	Params         map[string]any  `json:"params"`
	Symbol         string          `json:"symbol" binding:"required"`
	Interval       string          `json:"interval"`
	StartDate      string          `json:"startDate" binding:"required"`
	EndDate        string          `json:"endDate"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
}
