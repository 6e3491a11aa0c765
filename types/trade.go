package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one closed long position.
type Trade struct {
	EntryDate  time.Time       `json:"entryDate"`
	ExitDate   time.Time       `json:"exitDate"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Quantity   int64           `json:"quantity"`
	Profit     decimal.Decimal `json:"profit"`
	ReturnPct  decimal.Decimal `json:"returnPct"`
}

var hundred = decimal.NewFromInt(100)

// NewTrade derives profit and percentage return from the two fills.
func NewTrade(entryDate, exitDate time.Time, entryPrice, exitPrice decimal.Decimal, quantity int64) Trade {
	qty := decimal.NewFromInt(quantity)
	profit := exitPrice.Sub(entryPrice).Mul(qty)
	cost := entryPrice.Mul(qty)

	returnPct := decimal.Zero
	if cost.IsPositive() {
		returnPct = profit.Div(cost).Mul(hundred)
	}
	return Trade{
		EntryDate:  entryDate,
		ExitDate:   exitDate,
		EntryPrice: entryPrice,
		ExitPrice:  exitPrice,
		Quantity:   quantity,
		Profit:     profit,
		ReturnPct:  returnPct,
	}
}

// EquityPoint is the mark-to-market account value at one bar's close.
type EquityPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}
