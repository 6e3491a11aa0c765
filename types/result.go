package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestResult is the complete output of one engine run. Percent fields
// (TotalReturn, MaxDrawdown, WinRate) are expressed in percent, not fractions.
type BacktestResult struct {
	StrategyName   string          `json:"strategyName"`
	Symbol         string          `json:"symbol"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	FinalCapital   decimal.Decimal `json:"finalCapital"`
	TotalReturn    decimal.Decimal `json:"totalReturn"`
	SharpeRatio    decimal.Decimal `json:"sharpeRatio"`
	MaxDrawdown    decimal.Decimal `json:"maxDrawdown"`
	WinRate        decimal.Decimal `json:"winRate"`
	TotalTrades    int             `json:"totalTrades"`
	Trades         []Trade         `json:"trades"`
	EquityCurve    []EquityPoint   `json:"equityCurve"`
}
