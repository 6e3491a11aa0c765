package runner

import (
	"context"
	"io"

	"stratlab/internal/engine"
	"stratlab/internal/indicators"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// RunBatch runs independent requests in parallel, at most maxWorkers at a
// time. One failing request does not stop the others; outcomes keep the
// order of reqs. Runs of one batch share an indicator cache that is dropped
// when the batch returns, unless the runner was given its own.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))

	eng, cache := r.engine, r.cache
	if cache == nil {
		cache = indicators.NewCache()
		eng = engine.NewEngine(engine.WithIndicatorCache(cache), engine.WithLogger(r.logger))
	}

	var bar *progressbar.ProgressBar
	if r.progress != nil && len(reqs) > 0 {
		bar = initProgressBar(len(reqs), r.progress)
	}

	var g errgroup.Group
	g.SetLimit(r.maxWorkers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := r.run(ctx, req, eng)
			outcomes[i] = Outcome{Request: req, Result: res, Err: err}
			if err != nil {
				r.logger.Warn("backtest failed", "strategy", req.StrategyType, "symbol", req.Symbol, "error", err)
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	r.logger.Info("batch finished", "runs", len(reqs), "failed", countFailed(outcomes), "cachedIndicators", cache.Len())
	return outcomes
}

func countFailed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
