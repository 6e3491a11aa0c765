package engine

import (
	"iter"
	"time"

	"stratlab/internal/logging"
	"stratlab/types"
)

var simLog = logging.New("sim")

type positionState string

const (
	stateFlat positionState = "FLAT"
	stateLong positionState = "LONG"
)

// backtester walks the owned series bar by bar and applies signals to a
// single long-only position.
type backtester struct {
	series    *types.PriceSeries
	portfolio *portfolio
	state     positionState

	trades      []types.Trade
	equityCurve []types.EquityPoint
}

func newBacktester(series *types.PriceSeries, capital CapitalConfig) *backtester {
	return &backtester{
		series:      series,
		portfolio:   newPortfolio(capital.InitialCapital),
		state:       stateFlat,
		equityCurve: make([]types.EquityPoint, 0, series.Len()),
	}
}

func (b *backtester) run(signals iter.Seq[types.Signal]) error {
	next, stop := iter.Pull(signals)
	defer stop()

	pending, ok := next()
	last := b.series.Len() - 1
	for i := 0; i <= last; i++ {
		bar := b.series.Bar(i)

		for ok && !pending.Timestamp.After(bar.Timestamp) {
			if pending.Timestamp.Before(bar.Timestamp) {
				return types.Internal("signal at %s is out of order or matches no bar (current bar %s)",
					pending.Timestamp.Format(time.RFC3339), bar.Timestamp.Format(time.RFC3339))
			}
			if err := b.apply(pending, bar); err != nil {
				return err
			}
			pending, ok = next()
		}

		// Never leave exposure open after the last bar.
		if i == last && b.state == stateLong {
			if err := b.exit(bar, "end of series"); err != nil {
				return err
			}
		}

		value := b.portfolio.value(bar.Close)
		if value.IsNegative() {
			return types.Internal("negative equity %s at %s", value, bar.Timestamp.Format(time.RFC3339))
		}
		b.equityCurve = append(b.equityCurve, types.EquityPoint{Date: bar.Timestamp, Value: value})
	}

	if ok {
		return types.Internal("signal at %s is after the last bar", pending.Timestamp.Format(time.RFC3339))
	}
	return nil
}

func (b *backtester) apply(signal types.Signal, bar types.Bar) error {
	switch {
	case b.state == stateFlat && signal.Kind == types.SignalEnter:
		return b.enter(bar, signal.Reason)
	case b.state == stateLong && signal.Kind == types.SignalExit:
		return b.exit(bar, signal.Reason)
	case signal.Kind == types.SignalEnter || signal.Kind == types.SignalExit:
		// no pyramiding, no shorts
		simLog.Debug("signal ignored", "state", b.state, "kind", signal.Kind, "time", bar.Timestamp)
		return nil
	default:
		return types.Internal("unknown signal kind %q", signal.Kind)
	}
}

func (b *backtester) enter(bar types.Bar, reason string) error {
	qty, err := b.portfolio.open(bar.Close, bar.Timestamp)
	if err != nil {
		return &types.BacktestError{Kind: types.ErrInternal, Constraint: "open position", Err: err}
	}
	if qty == 0 {
		simLog.Debug("entry skipped, cash below one share", "time", bar.Timestamp, "price", bar.Close, "cash", b.portfolio.cash)
		return nil
	}
	b.state = stateLong
	simLog.Debug("entered long", "time", bar.Timestamp, "price", bar.Close, "qty", qty, "reason", reason)
	return nil
}

func (b *backtester) exit(bar types.Bar, reason string) error {
	trade, err := b.portfolio.close(bar.Close, bar.Timestamp)
	if err != nil {
		return &types.BacktestError{Kind: types.ErrInternal, Constraint: "close position", Err: err}
	}
	if trade.ExitDate.Before(trade.EntryDate) || trade.Quantity < 1 {
		return types.Internal("malformed trade entry=%s exit=%s qty=%d",
			trade.EntryDate.Format(time.RFC3339), trade.ExitDate.Format(time.RFC3339), trade.Quantity)
	}
	b.trades = append(b.trades, trade)
	b.state = stateFlat
	simLog.Debug("exited long", "time", bar.Timestamp, "price", bar.Close, "profit", trade.Profit, "reason", reason)
	return nil
}
