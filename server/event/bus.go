package event

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/hrygo/rosterly/internal/metrics"
)

// Handler processes one event. A returned error is logged by the bus and dropped.
type Handler func(ctx context.Context, e Event) error

// Dispatcher decides where the handlers for a published event run.
type Dispatcher interface {
	// Dispatch arranges for deliver to be called with e. It must not block past ctx.
	Dispatch(ctx context.Context, e Event, deliver func(context.Context, Event))
}

// Bus is an in-process publish/subscribe router keyed by event kind.
//
// Subscriptions are made during start-up, before the first Publish; the
// subscription table is not guarded for concurrent writes.
type Bus struct {
	handlers   map[Kind][]Handler
	dispatcher Dispatcher
}

// NewBus creates a bus. A nil dispatcher runs handlers inline.
func NewBus(dispatcher Dispatcher) *Bus {
	if dispatcher == nil {
		dispatcher = InlineDispatcher{}
	}
	return &Bus{
		handlers:   make(map[Kind][]Handler),
		dispatcher: dispatcher,
	}
}

// Subscribe appends handler to the handlers of kind. Handlers run in registration order.
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.handlers[kind] = append(b.handlers[kind], handler)
	slog.Debug("event handler subscribed", "kind", kind, "handlers", len(b.handlers[kind]))
}

// Handlers returns the number of handlers subscribed to kind.
func (b *Bus) Handlers(kind Kind) int {
	return len(b.handlers[kind])
}

// Publish hands e to every handler subscribed to its kind.
// Handlers see a context that keeps ctx's values but not its cancellation.
func (b *Bus) Publish(ctx context.Context, e Event) {
	metrics.EventsPublishedTotal.WithLabelValues(string(e.Kind())).Inc()
	if len(b.handlers[e.Kind()]) == 0 {
		return
	}
	b.dispatcher.Dispatch(ctx, e, b.deliver)
}

func (b *Bus) deliver(ctx context.Context, e Event) {
	ctx = context.WithoutCancel(ctx)
	for i, handler := range b.handlers[e.Kind()] {
		if err := invoke(ctx, handler, e); err != nil {
			slog.Error("event handler failed",
				"kind", e.Kind(),
				"event_id", e.ID(),
				"handler", i,
				"error", err)
		}
	}
}

func invoke(ctx context.Context, handler Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "kind", e.Kind(), "event_id", e.ID(), "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, e)
}
