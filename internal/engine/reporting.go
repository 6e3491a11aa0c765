package engine

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"stratlab/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// sharpe is reported as 0 below this volatility; float noise on a flat curve
// would otherwise produce huge ratios.
const minReturnStdev = 1e-12

// fillMetrics computes the headline metrics of a finished run. The
// calculations are independent and run concurrently.
func fillMetrics(result *types.BacktestResult, periodsPerYear float64) {
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		result.TotalReturn = calcTotalReturn(result.InitialCapital, result.FinalCapital, &wg)
	}()
	go func() {
		result.WinRate = calcWinRate(result.Trades, &wg)
	}()
	go func() {
		result.MaxDrawdown = calcMaxDrawdown(result.EquityCurve, &wg)
	}()
	go func() {
		result.SharpeRatio = calcSharpeRatio(result.EquityCurve, periodsPerYear, &wg)
	}()
	wg.Wait()
}

func calcTotalReturn(initial, final decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if !initial.IsPositive() {
		return decimal.Zero
	}
	return final.Sub(initial).Div(initial).Mul(hundred)
}

func calcWinRate(trades []types.Trade, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(trades) == 0 {
		return decimal.Zero
	}
	wins := 0
	for _, tr := range trades {
		if tr.Profit.IsPositive() {
			wins++
		}
	}
	return decimal.NewFromInt(int64(wins)).Mul(hundred).Div(decimal.NewFromInt(int64(len(trades))))
}

// calcMaxDrawdown is the deepest decline from a running peak in percent. It
// is never positive.
func calcMaxDrawdown(curve []types.EquityPoint, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	maxDD := decimal.Zero
	peak := decimal.Zero
	for i, point := range curve {
		if i == 0 || point.Value.GreaterThan(peak) {
			peak = point.Value
		}
		if !peak.IsPositive() {
			continue
		}
		dd := point.Value.Sub(peak).Div(peak).Mul(hundred)
		if dd.LessThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD
}

// calcSharpeRatio annualizes mean/stdev of per-bar simple returns using the
// sample standard deviation.
func calcSharpeRatio(curve []types.EquityPoint, periodsPerYear float64, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	returns := periodReturns(curve)
	if len(returns) < 2 {
		return decimal.Zero
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var varianceSum float64
	for _, r := range returns {
		diff := r - mean
		varianceSum += diff * diff
	}
	stdev := math.Sqrt(varianceSum / float64(len(returns)-1))
	if stdev < minReturnStdev || math.IsNaN(stdev) {
		return decimal.Zero
	}

	return decimal.NewFromFloat(mean / stdev * math.Sqrt(periodsPerYear))
}

func periodReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if !prev.IsPositive() {
			continue
		}
		r := curve[i].Value.Div(prev).Sub(decimal.NewFromInt(1))
		returns = append(returns, r.InexactFloat64())
	}
	return returns
}

type Report struct {
	// Meta / period info
	StrategyName string
	Symbol       string
	StartDate    time.Time
	TotalPeriod  time.Duration
	TotalTrades  int

	// Headline metrics, copied from the result
	TotalReturn decimal.Decimal
	SharpeRatio decimal.Decimal
	MaxDrawdown decimal.Decimal
	WinRate     decimal.Decimal

	// Absolute performance
	NetProfit            decimal.Decimal
	NetAvgProfitPerTrade decimal.Decimal
	CAGR                 decimal.Decimal

	// Trade-level distribution metrics
	AvgWin               decimal.Decimal
	AvgLoss              decimal.Decimal
	ProfitFactor         decimal.Decimal
	MaxConsecutiveLosses int

	// Percent of bars spent in the market
	Exposure decimal.Decimal
}

// GenerateReport derives the extended report from a finished run. It never
// modifies the result.
func GenerateReport(result *types.BacktestResult) *Report {
	report := &Report{
		StrategyName: result.StrategyName,
		Symbol:       result.Symbol,
		StartDate:    result.StartDate,
		TotalPeriod:  result.EndDate.Sub(result.StartDate).Truncate(24 * time.Hour),
		TotalTrades:  result.TotalTrades,
		TotalReturn:  result.TotalReturn,
		SharpeRatio:  result.SharpeRatio,
		MaxDrawdown:  result.MaxDrawdown,
		WinRate:      result.WinRate,
	}

	var wg sync.WaitGroup
	wg.Add(6)
	go func() {
		report.NetProfit = calcNetProfit(result.Trades, &wg)
	}()
	go func() {
		report.NetAvgProfitPerTrade = calcNetAvgProfitPerTrade(result.Trades, &wg)
	}()
	go func() {
		report.AvgWin, report.AvgLoss, report.ProfitFactor = calcWinLossMetrics(result.Trades, &wg)
	}()
	go func() {
		report.CAGR = calcCAGR(result.EquityCurve, &wg)
	}()
	go func() {
		report.MaxConsecutiveLosses = calcMaxConsecutiveLosses(result.Trades, &wg)
	}()
	go func() {
		report.Exposure = calcExposure(result.Trades, result.EquityCurve, &wg)
	}()
	wg.Wait()

	return report
}

func PrintReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Strategy:              %s\n", report.StrategyName)
	fmt.Fprintf(w, "Symbol:                %s\n", report.Symbol)
	fmt.Fprintf(w, "Start Date:            %s\n", report.StartDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Total Period:          %d days\n", report.TotalPeriod/(24*time.Hour))
	fmt.Fprintf(w, "Total Trades:          %d\n", report.TotalTrades)

	fmt.Fprintln(w, "\n-- Headline Metrics --")
	fmt.Fprintf(w, "Total Return %%:        %s\n", report.TotalReturn.StringFixed(2))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", report.SharpeRatio.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown %%:        %s\n", report.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Win Rate %%:            %s\n", report.WinRate.StringFixed(2))

	fmt.Fprintln(w, "\n-- Absolute Performance --")
	fmt.Fprintf(w, "Net Profit:            %s\n", report.NetProfit.StringFixed(2))
	fmt.Fprintf(w, "Avg Profit/Trade:      %s\n", report.NetAvgProfitPerTrade.StringFixed(2))
	fmt.Fprintf(w, "CAGR %%:                %s\n", report.CAGR.StringFixed(2))

	fmt.Fprintln(w, "\n-- Trade-Level Metrics --")
	fmt.Fprintf(w, "Avg Win:               %s\n", report.AvgWin.StringFixed(2))
	fmt.Fprintf(w, "Avg Loss:              %s\n", report.AvgLoss.StringFixed(2))
	fmt.Fprintf(w, "Profit Factor:         %s\n", report.ProfitFactor.StringFixed(2))
	fmt.Fprintf(w, "Max Consecutive Losses:%d\n", report.MaxConsecutiveLosses)
	fmt.Fprintf(w, "Exposure %%:            %s\n", report.Exposure.StringFixed(2))

	fmt.Fprintln(w, "===========================")
}

func calcNetProfit(trades []types.Trade, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	net := decimal.Zero
	for _, tr := range trades {
		net = net.Add(tr.Profit)
	}
	return net
}

func calcNetAvgProfitPerTrade(trades []types.Trade, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(trades) == 0 {
		return decimal.Zero
	}
	net := decimal.Zero
	for _, tr := range trades {
		net = net.Add(tr.Profit)
	}
	return net.Div(decimal.NewFromInt(int64(len(trades))))
}

// calcWinLossMetrics returns the average win, the average absolute loss and
// gross profit over gross loss (0 when there are no losses).
func calcWinLossMetrics(trades []types.Trade, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	defer wg.Done()

	sumWins := decimal.Zero
	sumLosses := decimal.Zero
	winCount := 0
	lossCount := 0
	for _, tr := range trades {
		switch {
		case tr.Profit.IsPositive():
			sumWins = sumWins.Add(tr.Profit)
			winCount++
		case tr.Profit.IsNegative():
			sumLosses = sumLosses.Add(tr.Profit.Abs())
			lossCount++
		}
	}

	avgWin := decimal.Zero
	avgLoss := decimal.Zero
	profitFactor := decimal.Zero
	if winCount > 0 {
		avgWin = sumWins.Div(decimal.NewFromInt(int64(winCount)))
	}
	if lossCount > 0 {
		avgLoss = sumLosses.Div(decimal.NewFromInt(int64(lossCount)))
		profitFactor = sumWins.Div(sumLosses)
	}
	return avgWin, avgLoss, profitFactor
}

// calcCAGR is in percent, over calendar years of 365.25 days.
func calcCAGR(curve []types.EquityPoint, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(curve) < 2 {
		return decimal.Zero
	}

	start := curve[0]
	end := curve[len(curve)-1]
	if !start.Value.IsPositive() {
		return decimal.Zero
	}

	duration := end.Date.Sub(start.Date)
	if duration <= 0 {
		return decimal.Zero
	}
	years := duration.Hours() / (24.0 * 365.25)

	ratio := end.Value.Div(start.Value)
	if !ratio.IsPositive() {
		return decimal.Zero
	}

	cagr := math.Pow(ratio.InexactFloat64(), 1.0/years) - 1.0
	if math.IsInf(cagr, 0) || math.IsNaN(cagr) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(cagr * 100)
}

func calcMaxConsecutiveLosses(trades []types.Trade, wg *sync.WaitGroup) int {
	defer wg.Done()

	maxLossStreak := 0
	currentStreak := 0
	for _, tr := range trades {
		if tr.Profit.IsNegative() {
			currentStreak++
			if currentStreak > maxLossStreak {
				maxLossStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxLossStreak
}

// calcExposure counts the bars on which a position was held at the close.
// The entry bar counts, the exit bar does not.
func calcExposure(trades []types.Trade, curve []types.EquityPoint, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(curve) == 0 || len(trades) == 0 {
		return decimal.Zero
	}

	held := 0
	t := 0
	for _, point := range curve {
		for t < len(trades) && !trades[t].ExitDate.After(point.Date) {
			t++
		}
		if t < len(trades) && !point.Date.Before(trades[t].EntryDate) {
			held++
		}
	}
	return decimal.NewFromInt(int64(held)).Mul(hundred).Div(decimal.NewFromInt(int64(len(curve))))
}
