package cache

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryRateCache implements cache.RateCache in process memory.
type MemoryRateCache struct {
	mu        sync.RWMutex
	rates     map[int64]decimal.Decimal
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryRateCache creates an empty in-memory cache.
func NewMemoryRateCache() *MemoryRateCache {
	return &MemoryRateCache{now: time.Now}
}

// Get returns a copy of the cached rates while they are fresh.
func (c *MemoryRateCache) Get(context.Context) (map[int64]decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rates == nil || c.now().After(c.expiresAt) {
		return nil, false, nil
	}
	return maps.Clone(c.rates), true, nil
}

// Set stores a copy of rates with TTL
func (c *MemoryRateCache) Set(_ context.Context, rates map[int64]decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates = maps.Clone(rates)
	c.expiresAt = c.now().Add(ttl)
	return nil
}

// Invalidate drops the snapshot.
func (c *MemoryRateCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates = nil
	return nil
}
