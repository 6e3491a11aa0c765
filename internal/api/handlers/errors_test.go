package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"stratlab/internal/repository"
	"stratlab/internal/runner"
	"stratlab/types"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantParam  string
	}{
		{"invalid config", types.InvalidConfig("shortPeriod", "must be >= 1"), http.StatusBadRequest, "INVALID_CONFIG", "shortPeriod"},
		{"unsupported strategy", types.UnsupportedStrategy("macd"), http.StatusBadRequest, "UNSUPPORTED_STRATEGY", "strategy"},
		{"insufficient data", types.InsufficientData("series", "needs 50 bars"), http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", "series"},
		{"internal", types.Internal("negative equity"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
		{"wrapped config error", fmt.Errorf("load SPY bars: %w", types.InvalidConfig("bars[3].close", "must be > 0")), http.StatusBadRequest, "INVALID_CONFIG", "bars[3].close"},
		{"asset not found", fmt.Errorf("load X bars: %w", repository.ErrAssetNotFound), http.StatusNotFound, "DATA_NOT_FOUND", ""},
		{"no candles", repository.ErrNoCandles, http.StatusNotFound, "DATA_NOT_FOUND", ""},
		{"interval", repository.ErrIntervalNotSupported, http.StatusBadRequest, "INVALID_CONFIG", "interval"},
		{"no store", runner.ErrNoStore, http.StatusNotImplemented, "NOT_IMPLEMENTED", ""},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT", ""},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, "CANCELLED", ""},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := classify(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.Equal(t, tt.wantParam, detail.Param)
		})
	}
}

func TestClassify_HidesUnknownErrors(t *testing.T) {
	_, detail := classify(errors.New("password=hunter2"))

	assert.Equal(t, "An unexpected error occurred", detail.Message)
}
