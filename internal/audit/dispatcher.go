package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops and counts events when the buffer is full instead of
	// blocking the caller.
	DropIfFull bool
}

// Dispatcher hands events to a sink on one background goroutine, so a slow
// sink never runs on the request path. A nil *Dispatcher discards events.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool
	queue      chan Event
	finished   chan struct{}

	// mu orders sends against closing the queue.
	mu     sync.RWMutex
	closed bool

	dropped   atomic.Uint64
	delivered atomic.Uint64
}

// NewDispatcher starts a dispatcher, or returns nil when cfg is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	size := max(cfg.BufferSize, 1)

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, size),
		finished:   make(chan struct{}),
	}
	go d.deliver()
	return d
}

// deliver runs until the queue is closed and empty.
func (d *Dispatcher) deliver() {
	defer close(d.finished)
	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
		d.delivered.Add(1)
	}
}

// Emit queues event. It is a no-op after Close. Without DropIfFull it waits
// for buffer space or for ctx to end.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
}

// Close flushes queued events to the sink and stops the goroutine. Extra
// calls return immediately.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.finished
}

// Dropped counts events discarded because the buffer was full or the
// caller's context ended first.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered counts events handed to the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
