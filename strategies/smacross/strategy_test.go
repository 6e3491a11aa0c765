package smacross

import (
	"errors"
	"slices"
	"testing"
	"time"

	"stratlab/internal/indicators"
	"stratlab/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFromCloses(t *testing.T, closes ...int64) *types.PriceSeries {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		d := decimal.NewFromInt(c)
		bars[i] = types.Bar{Timestamp: start.AddDate(0, 0, i), Open: d, High: d, Low: d, Close: d, Volume: 1000}
	}
	series, err := types.NewPriceSeries("TEST", types.Day, bars)
	require.NoError(t, err)
	return series
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		strat *Strategy
		param string
	}{
		{"valid", New("", 3, 5), ""},
		{"zero short", New("", 0, 5), "shortPeriod"},
		{"zero long", New("", 1, 0), "longPeriod"},
		{"short equals long", New("", 5, 5), "shortPeriod"},
		{"short above long", New("", 6, 5), "shortPeriod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.strat.Validate()
			if tt.param == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, types.ErrInvalidConfig)
			var btErr *types.BacktestError
			require.ErrorAs(t, err, &btErr)
			assert.Equal(t, tt.param, btErr.Param)
		})
	}
}

func TestSignals_Crossovers(t *testing.T) {
	series := seriesFromCloses(t, 5, 4, 3, 2, 1, 2, 3, 4, 5, 4, 3, 2, 1)
	strat := New("", 2, 3)

	seq, err := strat.Signals(series, nil)
	require.NoError(t, err)
	got := slices.Collect(seq)

	require.Len(t, got, 2)
	assert.Equal(t, types.SignalEnter, got[0].Kind)
	assert.Equal(t, series.Bar(6).Timestamp, got[0].Timestamp)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, types.SignalExit, got[1].Kind)
	assert.Equal(t, series.Bar(10).Timestamp, got[1].Timestamp)
}

func TestSignals_EqualAveragesDoNotSignal(t *testing.T) {
	series := seriesFromCloses(t, 10, 10, 10, 10, 10, 10, 10, 10)

	seq, err := New("", 2, 4).Signals(series, nil)
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(seq))
}

func TestSignals_Restartable(t *testing.T) {
	series := seriesFromCloses(t, 5, 4, 3, 2, 1, 2, 3, 4, 5, 4, 3, 2, 1)

	seq, err := New("", 2, 3).Signals(series, indicators.NewCache())
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// stopping early must not panic
	for range seq {
		break
	}
}

func TestSignals_InsufficientData(t *testing.T) {
	series := seriesFromCloses(t, 1, 2, 3)

	_, err := New("", 2, 50).Signals(series, nil)
	assert.True(t, errors.Is(err, types.ErrInsufficientData))
}

func TestSignals_UsesCache(t *testing.T) {
	series := seriesFromCloses(t, 5, 4, 3, 2, 1, 2, 3)
	cache := indicators.NewCache()

	_, err := New("", 2, 3).Signals(series, cache)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	_, err = New("", 3, 4).Signals(series, cache)
	require.NoError(t, err)
	assert.Equal(t, 3, cache.Len())
}

func TestNameAndParams(t *testing.T) {
	assert.Equal(t, "SMA Crossover (3/5)", New("", 3, 5).Name())
	assert.Equal(t, "Golden Cross", New("Golden Cross", 50, 200).Name())
	assert.Equal(t, map[string]any{"shortPeriod": 3, "longPeriod": 5}, New("", 3, 5).Params())
	assert.Equal(t, 5, New("", 3, 5).Lookback())
}
