package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGetQuantityForPrice(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		capital string
		want    int64
	}{
		{"exact multiple", "100", "1000", 10},
		{"floors remainder", "102", "10000", 98},
		{"fractional price", "33.33", "100", 3},
		{"just below one share", "100", "99.99", 0},
		{"zero capital", "100", "0", 0},
		{"zero price", "0", "100", 0},
		{"negative capital", "10", "-100", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getQuantityForPrice(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.capital))
			if got != tt.want {
				t.Errorf("getQuantityForPrice(%s, %s) = %d, want %d", tt.price, tt.capital, got, tt.want)
			}
		})
	}
}

func TestPortfolio_OpenClose(t *testing.T) {
	t0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	t1 := t0.AddDate(0, 0, 5)
	p := newPortfolio(decimal.NewFromInt(10000))

	qty, err := p.open(decimal.NewFromInt(102), t0)
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	if qty != 98 {
		t.Fatalf("open() qty = %d, want 98", qty)
	}
	if !p.cash.Equal(decimal.NewFromInt(4)) {
		t.Errorf("cash after open = %s, want 4", p.cash)
	}
	if got := p.value(decimal.NewFromInt(110)); !got.Equal(decimal.NewFromInt(4 + 98*110)) {
		t.Errorf("value() = %s, want %d", got, 4+98*110)
	}

	if _, err := p.open(decimal.NewFromInt(1), t0); !errors.Is(err, PositionAlreadyOpenErr) {
		t.Errorf("second open() error = %v, want %v", err, PositionAlreadyOpenErr)
	}

	trade, err := p.close(decimal.NewFromInt(144), t1)
	if err != nil {
		t.Fatalf("close() error = %v", err)
	}
	if !trade.Profit.Equal(decimal.NewFromInt(4116)) {
		t.Errorf("profit = %s, want 4116", trade.Profit)
	}
	if !trade.EntryDate.Equal(t0) || !trade.ExitDate.Equal(t1) {
		t.Errorf("trade dates = %s..%s, want %s..%s", trade.EntryDate, trade.ExitDate, t0, t1)
	}
	if !p.cash.Equal(decimal.NewFromInt(14116)) {
		t.Errorf("cash after close = %s, want 14116", p.cash)
	}
	if p.isLong() {
		t.Errorf("portfolio still long after close")
	}

	if _, err := p.close(decimal.NewFromInt(1), t1); !errors.Is(err, NoOpenPositionErr) {
		t.Errorf("close() on flat error = %v, want %v", err, NoOpenPositionErr)
	}
}

func TestPortfolio_OpenSkipsWhenCashBelowOneShare(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(50))

	qty, err := p.open(decimal.NewFromInt(100), time.Time{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	if qty != 0 || p.isLong() {
		t.Fatalf("open() qty = %d long = %v, want 0 and flat", qty, p.isLong())
	}
	if !p.cash.Equal(decimal.NewFromInt(50)) {
		t.Errorf("cash changed to %s", p.cash)
	}
}
