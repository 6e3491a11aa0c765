// Package runner is the service layer around the engine: it loads price data,
// parses strategy configuration, runs backtests alone or in parallel batches
// and keeps their results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"stratlab/internal/engine"
	"stratlab/internal/indicators"
	"stratlab/strategies"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

var ErrNoStore = errors.New("no result store configured")

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// BarSource supplies the price series of one symbol over a date range.
type BarSource interface {
	LoadBars(ctx context.Context, symbol string, interval types.Interval, start, end time.Time) (*types.PriceSeries, error)
}

// ResultStore keeps finished runs.
type ResultStore interface {
	SaveResult(ctx context.Context, rec types.StoredResult) (int64, error)
	ListResults(ctx context.Context, limit int) ([]types.StoredResult, error)
}

// Request is one backtest as a user describes it.
type Request struct {
	StrategyName   string          `json:"strategyName"`
	StrategyType   string          `json:"strategyType"`
	Params         map[string]any  `json:"params"`
	Symbol         string          `json:"symbol"`
	Interval       types.Interval  `json:"interval"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
}

// Outcome is the result of one request of a batch. Exactly one of Result and
// Err is set.
type Outcome struct {
	Request Request
	Result  *types.StoredResult
	Err     error
}

type Runner struct {
	source     BarSource
	store      ResultStore
	cache      *indicators.Cache
	engine     *engine.Engine
	maxWorkers int
	progress   io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Runner)

// WithStore saves every successful run.
func WithStore(store ResultStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithIndicatorCache keeps computed indicators across every run of the
// runner. Without it each batch gets its own cache and single runs compute
// their indicators directly, so a long-lived runner holds none of them.
func WithIndicatorCache(cache *indicators.Cache) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

func WithMaxWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxWorkers = n
		}
	}
}

// WithProgress draws a progress bar for batches on w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a runner reading bars from source.
func New(source BarSource, opts ...Option) *Runner {
	r := &Runner{
		source:     source,
		maxWorkers: 1,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.engine = engine.NewEngine(engine.WithIndicatorCache(r.cache), engine.WithLogger(r.logger))
	return r
}

// Run executes one request. Configuration is validated before any data is
// loaded; a cancelled ctx stops the request before the engine starts.
func (r *Runner) Run(ctx context.Context, req Request) (*types.StoredResult, error) {
	return r.run(ctx, req, r.engine)
}

func (r *Runner) run(ctx context.Context, req Request, eng *engine.Engine) (*types.StoredResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req = normalize(req)
	if req.Symbol == "" {
		return nil, types.InvalidConfig("symbol", "is required")
	}
	if !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		return nil, types.InvalidConfig("endDate", "must not be before startDate")
	}
	capital := engine.NewCapitalConfig(req.InitialCapital)
	if err := capital.Validate(); err != nil {
		return nil, err
	}
	strat, err := strategies.Parse(req.StrategyType, req.StrategyName, req.Params)
	if err != nil {
		return nil, err
	}

	series, err := r.source.LoadBars(ctx, req.Symbol, req.Interval, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("load %s bars: %w", req.Symbol, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := eng.Run(series, strat, capital)
	if err != nil {
		return nil, err
	}

	rec := &types.StoredResult{
		StrategyType:   strat.Type(),
		Parameters:     strat.Params(),
		CreatedAt:      r.now(),
		BacktestResult: *result,
	}
	if r.store != nil {
		id, err := r.store.SaveResult(ctx, *rec)
		if err != nil {
			return nil, fmt.Errorf("save result: %w", err)
		}
		rec.ID = id
	}
	return rec, nil
}

// History lists stored runs, newest first.
func (r *Runner) History(ctx context.Context, limit int) ([]types.StoredResult, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return r.store.ListResults(ctx, limit)
}

// CacheSize is the number of indicator series held by the cache given with
// WithIndicatorCache, zero without one.
func (r *Runner) CacheSize() int {
	return r.cache.Len()
}

func normalize(req Request) Request {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Interval == "" {
		req.Interval = types.Day
	}
	return req
}
