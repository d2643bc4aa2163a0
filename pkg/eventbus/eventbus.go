package eventbus

import (
	"context"
	"log/slog"

	"github.com/amirasaad/brokerage/pkg/domain/events"
)

// HandlerFunc handles one delivered event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes domain events after the work that produced them committed.
type Bus interface {
	Emit(ctx context.Context, event events.Event) error
	Close() error
}

// EmitAll publishes events in order. Failures are logged and never returned:
// the state change they describe is already durable.
func EmitAll(ctx context.Context, bus Bus, logger *slog.Logger, evts ...events.Event) {
	if bus == nil {
		return
	}
	for _, e := range evts {
		if err := bus.Emit(ctx, e); err != nil {
			logger.Warn("failed to publish event", "type", e.Type(), "error", err)
		}
	}
}
