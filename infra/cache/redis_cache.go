package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const latestRatesKey = "latest_rates"

// RedisRateCache implements cache.RateCache on a Redis string key shared by
// every API instance.
type RedisRateCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisRateCache connects to the Redis server at url and pings it.
func NewRedisRateCache(
	ctx context.Context,
	url, prefix string,
	logger *slog.Logger,
) (*RedisRateCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return NewRedisRateCacheWithClient(client, prefix, logger), nil
}

// NewRedisRateCacheWithClient wraps an existing client.
func NewRedisRateCacheWithClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisRateCache {
	return &RedisRateCache{client: client, prefix: prefix, logger: logger}
}

func (r *RedisRateCache) key() string {
	return r.prefix + latestRatesKey
}

func (r *RedisRateCache) Get(ctx context.Context) (map[int64]decimal.Decimal, bool, error) {
	val, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", r.key())
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", r.key(), "error", err)
		return nil, false, err
	}
	var rates map[int64]decimal.Decimal
	if err := json.Unmarshal(val, &rates); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", r.key(), "error", err)
		return nil, false, err
	}
	r.logger.Debug("Redis cache hit", "key", r.key(), "currencies", len(rates))
	return rates, true, nil
}

func (r *RedisRateCache) Set(ctx context.Context, rates map[int64]decimal.Decimal, ttl time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", r.key(), "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", r.key(), "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", r.key(), "ttl", ttl)
	return nil
}

func (r *RedisRateCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", r.key(), "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "key", r.key())
	return nil
}

// Close releases the client.
func (r *RedisRateCache) Close() error {
	return r.client.Close()
}
