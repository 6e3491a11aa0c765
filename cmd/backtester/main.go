package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"stratlab/internal/config"
	"stratlab/internal/engine"
	"stratlab/internal/logging"
	"stratlab/internal/runner"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reqs, err := buildRequests(cfg.Backtests)
	if err != nil {
		log.Fatal(err)
	}
	if len(reqs) == 0 {
		log.Fatal("no backtests configured")
	}

	var progress io.Writer
	if cfg.Runner.Progress {
		progress = os.Stderr
	}
	r, cleanup, err := runner.FromConfig(ctx, cfg, logger, progress)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	outcomes := r.RunBatch(ctx, reqs)

	failed := 0
	for i, o := range outcomes {
		if o.Err != nil {
			failed++
			logger.Error("backtest failed", "name", cfg.Backtests[i].Name, "symbol", o.Request.Symbol, "err", o.Err)
			continue
		}
		engine.PrintReport(os.Stdout, engine.GenerateReport(&o.Result.BacktestResult))
		if cfg.Reporting.PrintTrades {
			if err := engine.WriteTradesCSV(os.Stdout, o.Result.Trades); err != nil {
				logger.Error("print trades", "err", err)
			}
		}
		if cfg.Reporting.OutputDir != "" {
			if err := writeOutputs(cfg.Reporting.OutputDir, runName(cfg.Backtests[i], i), o.Result); err != nil {
				logger.Error("write outputs", "err", err)
			}
		}
	}

	if failed > 0 {
		cleanup()
		log.Fatalf("%d of %d backtests failed", failed, len(outcomes))
	}
}

func buildRequests(backtests []config.BacktestConfig) ([]runner.Request, error) {
	reqs := make([]runner.Request, 0, len(backtests))
	for i, b := range backtests {
		start, end, err := b.Window()
		if err != nil {
			return nil, fmt.Errorf("backtests[%d]: %w", i, err)
		}
		interval, ok := types.ConvertInterval[strings.ToUpper(b.Interval)]
		if !ok {
			return nil, fmt.Errorf("backtests[%d]: unknown interval %q", i, b.Interval)
		}
		capital := decimal.Zero
		if b.InitialCapital != "" {
			capital, err = decimal.NewFromString(b.InitialCapital)
			if err != nil {
				return nil, fmt.Errorf("backtests[%d]: initial_capital: %w", i, err)
			}
		}
		reqs = append(reqs, runner.Request{
			StrategyName:   b.Name,
			StrategyType:   b.Strategy,
			Params:         b.Params,
			Symbol:         b.Symbol,
			Interval:       interval,
			StartDate:      start,
			EndDate:        end,
			InitialCapital: capital,
		})
	}
	return reqs, nil
}

func writeOutputs(dir, name string, rec *types.StoredResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := engine.WriteTradesCSVFile(filepath.Join(dir, name+"_trades.csv"), rec.Trades); err != nil {
		return err
	}
	return engine.WriteEquityCSVFile(filepath.Join(dir, name+"_equity.csv"), rec.EquityCurve)
}

func runName(b config.BacktestConfig, i int) string {
	name := b.Name
	if name == "" {
		name = fmt.Sprintf("%s_%s_%d", b.Strategy, b.Symbol, i)
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
