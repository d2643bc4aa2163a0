// Command kafka_smoketest publishes one ledger event through the Kafka event
// bus and reads it back from the topic, to check a local broker setup.
//
// Usage: BROKERS=localhost:9092 go run ./scripts/kafka_smoketest
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	infra_eventbus "github.com/amirasaad/brokerage/infra/eventbus"
	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RunSmokeTest emits a BalanceChanged event and waits for it on the topic.
func RunSmokeTest(logger *slog.Logger) error {
	brokers := strings.Split(envOr("BROKERS", "localhost:9092"), ",")
	topic := envOr("TOPIC", "brokerage.smoketest")
	groupID := envOr("GROUP_ID", "brokerage-smoketest")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bus, err := infra_eventbus.NewWithKafka(brokers, logger, &infra_eventbus.KafkaEventBusConfig{
		Topic:        topic,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	sent := events.NewBalanceChanged(1, 1, decimal.RequireFromString("10.00"),
		decimal.RequireFromString("10.00"), 1, 1)
	if err := bus.Emit(ctx, sent); err != nil {
		return err
	}
	logger.Info("produced", "topic", topic, "event_id", sent.ID)

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = r.Close() }()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		_ = r.CommitMessages(ctx, msg)

		var env struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			logger.Warn("skipping undecodable message", "offset", msg.Offset, "error", err)
			continue
		}
		var got events.BalanceChanged
		if env.Type != sent.Type() || json.Unmarshal(env.Payload, &got) != nil || got.ID != sent.ID {
			continue
		}
		logger.Info("consumed", "topic", topic, "offset", msg.Offset, "event_id", got.ID)
		return nil
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := RunSmokeTest(logger); err != nil {
		logger.Error("kafka smoke test failed", "error", err)
		os.Exit(1)
	}
	logger.Info("kafka smoke test passed")
}
