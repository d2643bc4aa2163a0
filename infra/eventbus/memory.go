package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/brokerage/pkg/domain/events"
	"github.com/amirasaad/brokerage/pkg/eventbus"
)

// MemoryEventBus delivers events synchronously to in-process handlers and
// keeps every published event for inspection.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers:  make(map[string][]eventbus.HandlerFunc),
		logger:    logger.With("bus", "memory"),
		published: make([]events.Event, 0),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType.String()] = append(b.handlers[eventType.String()], handler)
}

// Emit dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[event.Type()]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed", "type", event.Type(), "error", err)
		}
	}
	return nil
}

// ClearPublished clears the list of published events.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = make([]events.Event, 0)
}

// Published returns a copy of the published events.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event{}, b.published...)
}

// PublishedOf returns the published events of one type.
func (b *MemoryEventBus) PublishedOf(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range b.Published() {
		if e.Type() == eventType.String() {
			out = append(out, e)
		}
	}
	return out
}

func (b *MemoryEventBus) Close() error { return nil }

var _ eventbus.Bus = (*MemoryEventBus)(nil)
