package cache

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateCache holds the latest exchange rate of every currency against the base
// currency, keyed by currency id. The snapshot is cached as a whole and
// dropped whenever a rate or currency changes.
type RateCache interface {
	// Get returns the cached snapshot; ok is false on a miss or expiry.
	Get(ctx context.Context) (rates map[int64]decimal.Decimal, ok bool, err error)
	Set(ctx context.Context, rates map[int64]decimal.Decimal, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Nop never caches anything.
type Nop struct{}

func (Nop) Get(context.Context) (map[int64]decimal.Decimal, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, map[int64]decimal.Decimal, time.Duration) error { return nil }

func (Nop) Invalidate(context.Context) error { return nil }
