package engine

import (
	"iter"

	"stratlab/internal/indicators"
	"stratlab/types"
)

// Strategy is one configured strategy variant. Each variant is its own type
// (see strategies/...), so adding a strategy never touches the engine.
type Strategy interface {
	// Name is the human readable label stored as BacktestResult.StrategyName.
	Name() string
	// Type is the configuration tag the strategy was parsed from, e.g. "sma".
	Type() string
	// Params are the named numeric parameters, keyed as in configuration.
	Params() map[string]any
	// Lookback is the minimum number of bars needed to emit any signal.
	Lookback() int
	// Validate checks parameter ranges and relations.
	Validate() error
	// Signals runs the indicator passes and returns a lazy, restartable,
	// timestamp ordered sequence of signals. A signal for bar i only depends
	// on bars 0..i.
	Signals(series *types.PriceSeries, cache *indicators.Cache) (iter.Seq[types.Signal], error)
}
