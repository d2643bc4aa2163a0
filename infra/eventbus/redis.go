package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: data})
}

// RedisEventBusConfig tunes the Redis Streams publisher.
type RedisEventBusConfig struct {
	Stream       string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxLen caps the stream length approximately; zero keeps everything.
	MaxLen int64
}

func DefaultRedisEventBusConfig() *RedisEventBusConfig {
	return &RedisEventBusConfig{
		Stream:       "brokerage:ledger",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisEventBus appends events to a Redis stream with XADD.
type RedisEventBus struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewWithRedis creates a Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379/0").
func NewWithRedis(url string, logger *slog.Logger, config *RedisEventBusConfig) (*RedisEventBus, error) {
	if url == "" {
		return nil, fmt.Errorf("redis event bus: url is required")
	}
	if config == nil {
		config = DefaultRedisEventBusConfig()
	}
	if config.Stream == "" {
		config.Stream = DefaultRedisEventBusConfig().Stream
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	if config.DialTimeout > 0 {
		opt.DialTimeout = config.DialTimeout
	}
	if config.WriteTimeout > 0 {
		opt.WriteTimeout = config.WriteTimeout
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), opt.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	return &RedisEventBus{
		client: client,
		stream: config.Stream,
		maxLen: config.MaxLen,
		logger: logger.With("bus", "redis", "stream", config.Stream),
	}, nil
}

// Emit publishes an event to the Redis stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"type": event.Type(), "event": string(body)},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}
	id, err := b.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type(), "id", id)
	return nil
}

func (b *RedisEventBus) Close() error {
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
