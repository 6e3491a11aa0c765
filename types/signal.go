package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type SignalKind string

const (
	SignalEnter SignalKind = "ENTER"
	SignalExit  SignalKind = "EXIT"
)

type Signal struct {
	Timestamp time.Time
	Kind      SignalKind
	// Close of the bar the signal was generated on.
	Price  decimal.Decimal
	Reason string
}

func NewSignal(
	kind SignalKind,
	price decimal.Decimal,
	reason string,
	timestamp time.Time,
) Signal {
	return Signal{
		Timestamp: timestamp,
		Kind:      kind,
		Price:     price,
		Reason:    reason,
	}
}
