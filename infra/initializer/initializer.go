package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/brokerage/infra"
	infra_cache "github.com/amirasaad/brokerage/infra/cache"
	infra_eventbus "github.com/amirasaad/brokerage/infra/eventbus"
	"github.com/amirasaad/brokerage/infra/migrations"
	infra_repository "github.com/amirasaad/brokerage/infra/repository"
	"github.com/amirasaad/brokerage/pkg/app"
	"github.com/amirasaad/brokerage/pkg/cache"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/eventbus"
)

// InitializeDependencies opens the database, applies pending migrations and
// builds the event bus.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database pool: %w", err)
		}
		if err := migrations.Up(sqlDB, logger); err != nil {
			return nil, err
		}
	}

	deps.Uow = infra_repository.NewUoW(db)

	deps.EventBus, err = initEventBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps.RateCache, err = initRateCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// initRateCache builds the optional latest-rates cache. A nil cache means rates
// are read from the database on every valuation. An unreachable redis falls
// back to process memory.
func initRateCache(cfg *config.App, logger *slog.Logger) (cache.RateCache, error) {
	cacheCfg := cfg.Cache
	if cacheCfg == nil {
		return nil, nil
	}
	switch cacheCfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return infra_cache.NewMemoryRateCache(), nil
	case "redis":
		url := strings.TrimSpace(cacheCfg.RedisURL)
		if url == "" && cfg.EventBus != nil && cfg.EventBus.Redis != nil {
			url = cfg.EventBus.Redis.URL
		}
		if url == "" {
			return nil, fmt.Errorf("cache: redis driver requires CACHE_REDIS_URL")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rc, err := infra_cache.NewRedisRateCache(ctx, url, cacheCfg.Prefix, logger)
		if err != nil {
			logger.Warn("Rate cache unreachable, using in-memory cache", "error", err)
			return infra_cache.NewMemoryRateCache(), nil
		}
		logger.Info("Rate cache ready", "driver", "redis")
		return rc, nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cacheCfg.Driver)
	}
}

// initEventBus rejects incomplete settings but falls back to the in-memory bus
// when the configured broker cannot be reached.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	busCfg := cfg.EventBus
	if busCfg == nil {
		return infra_eventbus.NewWithMemory(logger), nil
	}
	switch busCfg.Driver {
	case infra_eventbus.DriverRedis:
		if busCfg.Redis == nil || strings.TrimSpace(busCfg.Redis.URL) == "" {
			return nil, fmt.Errorf("event bus: redis driver requires EVENT_BUS_REDIS_URL")
		}
	case infra_eventbus.DriverKafka:
		if busCfg.Kafka == nil || len(busCfg.Kafka.Brokers) == 0 {
			return nil, fmt.Errorf("event bus: kafka driver requires EVENT_BUS_KAFKA_BROKERS")
		}
	}

	bus, err := infra_eventbus.New(busCfg, logger)
	if err != nil {
		if busCfg.Driver == infra_eventbus.DriverRedis || busCfg.Driver == infra_eventbus.DriverKafka {
			logger.Warn("Event bus unreachable, using in-memory bus",
				"driver", busCfg.Driver, "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return nil, err
	}
	logger.Info("Event bus ready", "driver", busCfg.Driver)
	return bus, nil
}
