package engine

import (
	"log/slog"

	"stratlab/internal/indicators"
	"stratlab/types"
)

// Engine runs backtests. It is safe for concurrent use; runs only share the
// append-only indicator cache.
type Engine struct {
	cache  *indicators.Cache
	logger *slog.Logger
}

type Option func(*Engine)

// WithIndicatorCache shares one indicator cache between runs. Without it
// every run computes its indicators from scratch.
func WithIndicatorCache(cache *indicators.Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates the inputs, generates signals, simulates them over the series
// and summarizes the outcome. The same inputs always give the same result.
func (e *Engine) Run(series *types.PriceSeries, strat Strategy, capital CapitalConfig) (*types.BacktestResult, error) {
	if series == nil {
		return nil, types.InsufficientData("series", "must contain at least one bar")
	}
	if strat == nil {
		return nil, types.InvalidConfig("strategy", "must be set")
	}
	if err := capital.Validate(); err != nil {
		return nil, err
	}
	if err := strat.Validate(); err != nil {
		return nil, err
	}
	if series.Len() < strat.Lookback() {
		return nil, types.InsufficientData("series", "has %d bars, %s needs at least %d",
			series.Len(), strat.Type(), strat.Lookback())
	}

	signals, err := strat.Signals(series, e.cache)
	if err != nil {
		return nil, err
	}

	bt := newBacktester(series, capital)
	if err := bt.run(signals); err != nil {
		return nil, err
	}

	result := &types.BacktestResult{
		StrategyName:   strat.Name(),
		Symbol:         series.Symbol(),
		StartDate:      series.Start(),
		EndDate:        series.End(),
		InitialCapital: capital.InitialCapital,
		FinalCapital:   bt.equityCurve[len(bt.equityCurve)-1].Value,
		TotalTrades:    len(bt.trades),
		Trades:         bt.trades,
		EquityCurve:    bt.equityCurve,
	}
	if result.Trades == nil {
		result.Trades = []types.Trade{}
	}
	fillMetrics(result, series.PeriodsPerYear())

	e.logger.Info("backtest finished",
		"strategy", result.StrategyName,
		"symbol", result.Symbol,
		"bars", series.Len(),
		"trades", result.TotalTrades,
		"totalReturn", result.TotalReturn.StringFixed(2),
	)
	return result, nil
}

// Run is a one-off run without a shared indicator cache.
func Run(series *types.PriceSeries, strat Strategy, capital CapitalConfig) (*types.BacktestResult, error) {
	return NewEngine().Run(series, strat, capital)
}
