package engine

import (
	"stratlab/types"

	"github.com/shopspring/decimal"
)

type PositionSizing string

const (
	// SizingFull puts all available cash into every entry.
	SizingFull PositionSizing = "full"
)

type CapitalConfig struct {
	InitialCapital decimal.Decimal
	PositionSizing PositionSizing
}

func NewCapitalConfig(initialCapital decimal.Decimal) CapitalConfig {
	return CapitalConfig{
		InitialCapital: initialCapital,
		PositionSizing: SizingFull,
	}
}

func (c CapitalConfig) Validate() error {
	if !c.InitialCapital.IsPositive() {
		return types.InvalidConfig("initialCapital", "must be > 0, got %s", c.InitialCapital)
	}
	switch c.PositionSizing {
	case "", SizingFull:
		return nil
	default:
		return types.InvalidConfig("positionSizing", "must be %q, got %q", SizingFull, c.PositionSizing)
	}
}
