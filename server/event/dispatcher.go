package event

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/rosterly/internal/metrics"
)

// InlineDispatcher runs handlers on the publishing goroutine before Publish returns.
type InlineDispatcher struct{}

func (InlineDispatcher) Dispatch(ctx context.Context, e Event, deliver func(context.Context, Event)) {
	deliver(ctx, e)
}

type queueItem struct {
	ctx     context.Context
	event   Event
	deliver func(context.Context, Event)
}

// QueueDispatcher hands events to a fixed pool of workers over a bounded queue.
// When the queue is full, Dispatch blocks until there is room or ctx is done,
// in which case the event is dropped.
type QueueDispatcher struct {
	queue chan queueItem
	group *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

func NewQueueDispatcher(size, workers int) *QueueDispatcher {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 1
	}

	d := &QueueDispatcher{
		queue: make(chan queueItem, size),
		group: &errgroup.Group{},
	}
	for range workers {
		d.group.Go(func() error {
			for item := range d.queue {
				item.deliver(item.ctx, item.event)
			}
			return nil
		})
	}
	return d
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, e Event, deliver func(context.Context, Event)) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(e, "dispatcher closed")
		return
	}

	// Detach before queueing; the publisher's request is usually over by the time a worker runs.
	item := queueItem{ctx: context.WithoutCancel(ctx), event: e, deliver: deliver}
	select {
	case d.queue <- item:
	case <-ctx.Done():
		d.drop(e, ctx.Err().Error())
	}
}

// Close stops accepting events and waits until every queued event has been delivered.
func (d *QueueDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	return d.group.Wait()
}

func (*QueueDispatcher) drop(e Event, reason string) {
	metrics.EventsDroppedTotal.WithLabelValues(string(e.Kind())).Inc()
	slog.Warn("event dropped", "kind", e.Kind(), "event_id", e.ID(), "reason", reason)
}
