// Package strategies turns a strategy tag plus named parameters, as they come
// from configuration files or API requests, into an engine.Strategy.
package strategies

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"stratlab/internal/engine"
	"stratlab/strategies/rsithreshold"
	"stratlab/strategies/smacross"
	"stratlab/types"

	"github.com/shopspring/decimal"
)

// Info describes one supported strategy for listings.
type Info struct {
	Type     string         `json:"type"`
	Aliases  []string       `json:"aliases"`
	Defaults map[string]any `json:"defaults"`
}

var smaAliases = []string{smacross.Tag, "sma_crossover", "moving_average"}

var (
	defaultShortPeriod = 20
	defaultLongPeriod  = 50
	defaultRSIPeriod   = 14
	defaultOversold    = decimal.NewFromInt(30)
	defaultOverbought  = decimal.NewFromInt(70)
)

func Supported() []Info {
	return []Info{
		{
			Type:    smacross.Tag,
			Aliases: smaAliases,
			Defaults: map[string]any{
				"shortPeriod": defaultShortPeriod,
				"longPeriod":  defaultLongPeriod,
			},
		},
		{
			Type:    rsithreshold.Tag,
			Aliases: []string{rsithreshold.Tag},
			Defaults: map[string]any{
				"period":     defaultRSIPeriod,
				"oversold":   defaultOversold.InexactFloat64(),
				"overbought": defaultOverbought.InexactFloat64(),
			},
		},
	}
}

// Parse builds the strategy for tag. Missing parameters take the defaults
// listed by Supported; present ones are validated before returning.
func Parse(tag, label string, params map[string]any) (engine.Strategy, error) {
	norm := strings.ToLower(strings.TrimSpace(tag))
	p := paramReader{params: params}

	var strat engine.Strategy
	switch {
	case slices.Contains(smaAliases, norm):
		short := p.int(defaultShortPeriod, "shortPeriod", "short_period")
		long := p.int(defaultLongPeriod, "longPeriod", "long_period")
		strat = smacross.New(label, short, long)
	case norm == rsithreshold.Tag:
		period := p.int(defaultRSIPeriod, "period", "rsiPeriod", "rsi_period")
		oversold := p.decimal(defaultOversold, "oversold")
		overbought := p.decimal(defaultOverbought, "overbought")
		strat = rsithreshold.New(label, period, oversold, overbought)
	default:
		// includes "macd", which stored strategies may carry
		return nil, types.UnsupportedStrategy(tag)
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := strat.Validate(); err != nil {
		return nil, err
	}
	return strat, nil
}

// paramReader looks parameters up under any of their accepted names and
// keeps the first conversion error.
type paramReader struct {
	params map[string]any
	err    error
}

func (r *paramReader) lookup(names ...string) (string, any, bool) {
	for _, name := range names {
		if v, ok := r.params[name]; ok && v != nil {
			return name, v, true
		}
	}
	return "", nil, false
}

func (r *paramReader) int(def int, names ...string) int {
	name, raw, ok := r.lookup(names...)
	if !ok {
		return def
	}
	d, err := toDecimal(raw)
	if err == nil && !d.Equal(d.Truncate(0)) {
		err = fmt.Errorf("must be a whole number, got %s", d)
	}
	if err == nil && (d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32))) {
		err = fmt.Errorf("out of range: %s", d)
	}
	if err != nil {
		r.fail(names[0], name, err)
		return def
	}
	return int(d.IntPart())
}

func (r *paramReader) decimal(def decimal.Decimal, names ...string) decimal.Decimal {
	name, raw, ok := r.lookup(names...)
	if !ok {
		return def
	}
	d, err := toDecimal(raw)
	if err != nil {
		r.fail(names[0], name, err)
		return def
	}
	return d
}

func (r *paramReader) fail(param, given string, err error) {
	if r.err != nil {
		return
	}
	if given != param {
		param = fmt.Sprintf("%s (%s)", param, given)
	}
	r.err = &types.BacktestError{Kind: types.ErrInvalidConfig, Param: param, Constraint: err.Error()}
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("must be a finite number")
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return decimal.Zero, fmt.Errorf("must be a number, got %q", v)
		}
		return decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, fmt.Errorf("must be a number, got %T", raw)
	}
}

