package eventbus

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/eventbus"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverKafka  = "kafka"
)

// New builds the bus selected by cfg.Driver.
func New(cfg *config.EventBus, logger *slog.Logger) (eventbus.Bus, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == DriverMemory {
		return NewWithMemory(logger), nil
	}
	switch cfg.Driver {
	case DriverRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("event bus: redis driver selected without redis settings")
		}
		return NewWithRedis(cfg.Redis.URL, logger, &RedisEventBusConfig{
			Stream:       cfg.Redis.Stream,
			DialTimeout:  cfg.Redis.DialTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	case DriverKafka:
		if cfg.Kafka == nil {
			return nil, fmt.Errorf("event bus: kafka driver selected without kafka settings")
		}
		return NewWithKafka(cfg.Kafka.Brokers, logger, &KafkaEventBusConfig{Topic: cfg.Kafka.Topic})
	default:
		return nil, fmt.Errorf("event bus: unknown driver %q", cfg.Driver)
	}
}
