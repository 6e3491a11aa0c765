package models

import (
	"stratlab/strategies"
	"stratlab/types"
)

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID       int64               `json:"id,omitempty"`
	Status   string              `json:"status"`
	Backtest *types.StoredResult `json:"backtest"`
}

// HistoryResponse lists stored runs, newest first
type HistoryResponse struct {
	Backtests []types.StoredResult `json:"backtests"`
	Count     int                  `json:"count"`
}

type StrategiesResponse struct {
	Strategies []strategies.Info `json:"strategies"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information. Param and Constraint are set for
// configuration errors that point at one input.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Param      string `json:"param,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}
