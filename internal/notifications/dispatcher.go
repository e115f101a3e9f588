package notifications

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"folio/internal/logging"
)

const defaultQueueSize = 64

type envelope struct {
	ctx     context.Context
	event   Event
	payload Payload
}

// Dispatcher delivers events to an inner Service on a single background
// goroutine. Publish never blocks: when the queue is full the event is dropped
// and counted.
type Dispatcher struct {
	inner   Service
	logger  *slog.Logger
	queue   chan envelope
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewDispatcher starts the delivery goroutine.
func NewDispatcher(inner Service, logger *slog.Logger, size int) *Dispatcher {
	if inner == nil {
		inner = noopService{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if size <= 0 {
		size = defaultQueueSize
	}
	d := &Dispatcher{
		inner:  inner,
		logger: logger,
		queue:  make(chan envelope, size),
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

// Publish enqueues the event and returns immediately.
func (d *Dispatcher) Publish(ctx context.Context, event Event, payload Payload) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil
	}
	// Delivery outlives the caller's stage; keep values, drop cancellation.
	env := envelope{ctx: context.WithoutCancel(ctx), event: event, payload: payload}
	select {
	case d.queue <- env:
	default:
		d.dropped.Add(1)
		d.logger.Debug("notification dropped", logging.String("event", string(event)))
	}
	return nil
}

// Dropped reports how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be delivered, or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for env := range d.queue {
		if err := d.inner.Publish(env.ctx, env.event, env.payload); err != nil {
			d.logger.Debug("notification delivery failed",
				logging.String("event", string(env.event)),
				logging.Error(err),
			)
		}
	}
}
