package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/eventbus"
	"github.com/segmentio/kafka-go"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	Topic        string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{
		Topic:        "brokerage.ledger",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// messageWriter is the part of *kafka.Writer the bus uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventBus writes every event to one topic, keyed by event type.
type KafkaEventBus struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: broker addresses, e.g. "localhost:9092".
func NewWithKafka(
	brokers []string,
	logger *slog.Logger,
	config *KafkaEventBusConfig,
) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if config == nil {
		config = DefaultKafkaEventBusConfig()
	}
	if strings.TrimSpace(config.Topic) == "" {
		config.Topic = DefaultKafkaEventBusConfig().Topic
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 5 * time.Second
	}

	dialer := &kafka.Dialer{Timeout: config.DialTimeout}
	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	conn, err := dialer.DialContext(ctx, "tcp", parsed[0])
	if err != nil {
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(parsed...),
		Topic:                  config.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           config.WriteTimeout,
	}
	return newKafkaEventBus(writer, config.Topic, logger), nil
}

func newKafkaEventBus(writer messageWriter, topic string, logger *slog.Logger) *KafkaEventBus {
	return &KafkaEventBus{
		writer: writer,
		topic:  topic,
		logger: logger.With("bus", "kafka", "topic", topic),
	}
}

// Emit publishes an event to Kafka.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	if b == nil || b.writer == nil {
		return fmt.Errorf("kafka event bus: writer not initialized")
	}
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Type()),
		Value: body,
		Time:  time.Now(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Close flushes pending writes and closes the connection.
func (b *KafkaEventBus) Close() error {
	if b == nil || b.writer == nil {
		return nil
	}
	return b.writer.Close()
}

func parseBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, list := range brokers {
		for _, p := range strings.Split(list, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
