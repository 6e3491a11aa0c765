package indicators

import (
	"sync"

	"stratlab/types"
)

type Kind string

const (
	KindSMA Kind = "sma"
	KindRSI Kind = "rsi"
)

// Key identifies one computed indicator series.
type Key struct {
	SeriesID string
	Kind     Kind
	Period   int
}

// Cache memoizes indicator series across runs that share a PriceSeries. It is
// append-only: an entry, once stored, is never replaced or evicted, so
// concurrent readers always see the same slice. Callers must treat returned
// series as read-only. A nil *Cache computes without memoizing.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]Series
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Key]Series)}
}

// SMA returns the cached SMA for series and period, computing it on a miss.
func (c *Cache) SMA(series *types.PriceSeries, period int) (Series, error) {
	return c.getOrCompute(Key{SeriesID: series.ID(), Kind: KindSMA, Period: period}, func() (Series, error) {
		return SMA(series, period)
	})
}

// RSI returns the cached RSI for series and period, computing it on a miss.
func (c *Cache) RSI(series *types.PriceSeries, period int) (Series, error) {
	return c.getOrCompute(Key{SeriesID: series.ID(), Kind: KindRSI, Period: period}, func() (Series, error) {
		return RSI(series, period)
	})
}

// Len is the number of stored series.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) getOrCompute(key Key, compute func() (Series, error)) (Series, error) {
	if c == nil {
		return compute()
	}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// Computed outside the lock; two racing callers may both compute, the
	// first one to store wins and both return the stored series.
	computed, err := compute()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = computed
	return computed, nil
}
