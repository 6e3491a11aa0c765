package strategies

import (
	"encoding/json"
	"testing"

	"stratlab/strategies/rsithreshold"
	"stratlab/strategies/smacross"
	"stratlab/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SMAAliases(t *testing.T) {
	for _, tag := range []string{"sma", "SMA", "sma_crossover", "moving_average", " Moving_Average "} {
		t.Run(tag, func(t *testing.T) {
			strat, err := Parse(tag, "", map[string]any{"short_period": 3, "longPeriod": 5.0})
			require.NoError(t, err)
			sma, ok := strat.(*smacross.Strategy)
			require.True(t, ok, "got %T", strat)
			assert.Equal(t, 3, sma.ShortPeriod)
			assert.Equal(t, 5, sma.LongPeriod)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	strat, err := Parse("sma", "", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"shortPeriod": 20, "longPeriod": 50}, strat.Params())

	strat, err = Parse("rsi", "My RSI", map[string]any{})
	require.NoError(t, err)
	rsi := strat.(*rsithreshold.Strategy)
	assert.Equal(t, 14, rsi.Period)
	assert.True(t, rsi.Oversold.Equal(decimal.NewFromInt(30)))
	assert.True(t, rsi.Overbought.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, "My RSI", strat.Name())
}

func TestParse_RSIParamForms(t *testing.T) {
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"rsiPeriod": 7, "oversold": "25.5", "overbought": 80}`), &params))

	strat, err := Parse("rsi", "", params)
	require.NoError(t, err)
	rsi := strat.(*rsithreshold.Strategy)
	assert.Equal(t, 7, rsi.Period)
	assert.True(t, rsi.Oversold.Equal(decimal.RequireFromString("25.5")))
	assert.True(t, rsi.Overbought.Equal(decimal.NewFromInt(80)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		params  map[string]any
		wantErr error
		param   string
	}{
		{"unknown tag", "bollinger", nil, types.ErrUnsupportedStrategy, "strategy"},
		{"macd", "macd", nil, types.ErrUnsupportedStrategy, "strategy"},
		{"empty tag", "", nil, types.ErrUnsupportedStrategy, "strategy"},
		{"short not below long", "sma", map[string]any{"shortPeriod": 50, "longPeriod": 20}, types.ErrInvalidConfig, "shortPeriod"},
		{"fractional period", "sma", map[string]any{"shortPeriod": 2.5}, types.ErrInvalidConfig, "shortPeriod"},
		{"alias named in error", "sma", map[string]any{"short_period": "abc"}, types.ErrInvalidConfig, "shortPeriod (short_period)"},
		{"non numeric", "rsi", map[string]any{"oversold": true}, types.ErrInvalidConfig, "oversold"},
		{"oversold out of range", "rsi", map[string]any{"oversold": -5}, types.ErrInvalidConfig, "oversold"},
		{"thresholds inverted", "rsi", map[string]any{"oversold": 80, "overbought": 20}, types.ErrInvalidConfig, "oversold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strat, err := Parse(tt.tag, "", tt.params)
			assert.Nil(t, strat)
			require.ErrorIs(t, err, tt.wantErr)
			var btErr *types.BacktestError
			require.ErrorAs(t, err, &btErr)
			assert.Equal(t, tt.param, btErr.Param)
		})
	}
}

func TestSupported(t *testing.T) {
	infos := Supported()
	require.Len(t, infos, 2)
	for _, info := range infos {
		strat, err := Parse(info.Type, "", info.Defaults)
		require.NoError(t, err, info.Type)
		assert.Equal(t, info.Type, strat.Type())
	}
}
