package indicators

import (
	"stratlab/internal/logging"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

var rsiLog = logging.New("rsi")

var hundred = decimal.NewFromInt(100)

// RSI is Wilder's relative strength index. The first average gain/loss is the
// plain mean of the first period close-to-close deltas; every later bar is
// smoothed with avg = (prev*(period-1) + current) / period. The value is 100
// whenever the average loss is zero and undefined for the first period bars.
func RSI(series *types.PriceSeries, period int) (Series, error) {
	if period < 1 {
		return nil, types.InvalidConfig("period", "must be >= 1, got %d", period)
	}
	if period+1 > series.Len() {
		return nil, types.InsufficientData("period",
			"RSI(%d) needs %d bars, series has %d", period, period+1, series.Len())
	}

	closes := series.Closes()
	out := make(Series, len(closes))
	p := decimal.NewFromInt(int64(period))
	pMinusOne := decimal.NewFromInt(int64(period - 1))

	avgGain, avgLoss := decimal.Zero, decimal.Zero
	for i := 1; i <= period; i++ {
		gain, loss := splitDelta(closes[i].Sub(closes[i-1]))
		avgGain = avgGain.Add(gain)
		avgLoss = avgLoss.Add(loss)
	}
	avgGain = avgGain.Div(p)
	avgLoss = avgLoss.Div(p)
	out[period] = decimal.NullDecimal{Decimal: rsiValue(avgGain, avgLoss), Valid: true}

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitDelta(closes[i].Sub(closes[i-1]))
		avgGain = avgGain.Mul(pMinusOne).Add(gain).Div(p)
		avgLoss = avgLoss.Mul(pMinusOne).Add(loss).Div(p)
		out[i] = decimal.NullDecimal{Decimal: rsiValue(avgGain, avgLoss), Valid: true}
	}

	rsiLog.Debug("RSI computed", "symbol", series.Symbol(), "period", period, "bars", len(out))
	return out, nil
}

// splitDelta returns the gain and the (positive) loss of one close-to-close move.
func splitDelta(delta decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if delta.IsPositive() {
		return delta, decimal.Zero
	}
	return decimal.Zero, delta.Neg()
}

func rsiValue(avgGain, avgLoss decimal.Decimal) decimal.Decimal {
	if avgLoss.IsZero() {
		return hundred
	}
	rs := avgGain.Div(avgLoss)
	return hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs)))
}
