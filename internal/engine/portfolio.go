package engine

import (
	"errors"
	"time"

	"stratlab/types"

	"github.com/shopspring/decimal"
)

var InsufficientBalanceErr = errors.New("insufficient balance when opening position")
var NoOpenPositionErr = errors.New("no open position to close")
var PositionAlreadyOpenErr = errors.New("position already open")

// portfolio tracks cash and at most one long position in whole shares.
type portfolio struct {
	cash     decimal.Decimal
	position *Position
}

type Position struct {
	Quantity   int64
	EntryPrice decimal.Decimal
	EntryTime  time.Time
}

func newPortfolio(initialCash decimal.Decimal) *portfolio {
	return &portfolio{cash: initialCash}
}

func (p *portfolio) isLong() bool {
	return p.position != nil
}

// open buys as many whole shares as the cash allows. It returns 0 and leaves
// the portfolio untouched when not even one share is affordable.
func (p *portfolio) open(price decimal.Decimal, at time.Time) (int64, error) {
	if p.position != nil {
		return 0, PositionAlreadyOpenErr
	}
	qty := getQuantityForPrice(price, p.cash)
	if qty == 0 {
		return 0, nil
	}

	newCash := p.cash.Sub(price.Mul(decimal.NewFromInt(qty)))
	if newCash.IsNegative() {
		return 0, InsufficientBalanceErr
	}
	p.cash = newCash
	p.position = &Position{
		Quantity:   qty,
		EntryPrice: price,
		EntryTime:  at,
	}
	return qty, nil
}

// close sells the whole position and returns the realized trade.
func (p *portfolio) close(price decimal.Decimal, at time.Time) (types.Trade, error) {
	pos := p.position
	if pos == nil {
		return types.Trade{}, NoOpenPositionErr
	}
	p.cash = p.cash.Add(price.Mul(decimal.NewFromInt(pos.Quantity)))
	p.position = nil
	return types.NewTrade(pos.EntryTime, at, pos.EntryPrice, price, pos.Quantity), nil
}

// value marks the portfolio to market at the given price.
func (p *portfolio) value(markPrice decimal.Decimal) decimal.Decimal {
	if p.position == nil {
		return p.cash
	}
	return p.cash.Add(markPrice.Mul(decimal.NewFromInt(p.position.Quantity)))
}

// getQuantityForPrice is floor(capital / price), computed exactly.
func getQuantityForPrice(price, capitalToUse decimal.Decimal) int64 {
	if !price.IsPositive() || !capitalToUse.IsPositive() {
		return 0
	}
	q, _ := capitalToUse.QuoRem(price, 0)
	return q.IntPart()
}
