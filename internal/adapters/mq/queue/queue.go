// Package queue carries UI events from HTTP handlers to the event loop.
//
// The queue is a bounded buffered channel. Enqueue never blocks: a full
// queue rejects the event so a burst of pointer moves cannot stall a
// request handler.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Event is the payload flowing through the queue.
type Event = model.UIEvent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event. It fails with ErrFull or ErrClosed.
	Enqueue(ctx context.Context, e Event) error

	// Dequeue returns the receive side of the queue. It is closed once the
	// queue is closed and drained.
	Dequeue() <-chan Event

	// Len returns the current number of queued events.
	Len() int

	// Close stops accepting events. Queued events stay readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) error {
	const op = "queue.enqueue"

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("%s: %w", op, err)
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return fmt.Errorf("%s: %w", op, ErrFull)
	}
}

// Dequeue implements Queue. Every receive updates the size gauges, so
// consumers should read from the returned channel only.
func (q *InMemoryQueue) Dequeue() <-chan Event {
	return q.events
}

// Ack records that a consumer took one event off the queue.
func (q *InMemoryQueue) Ack() {
	metrics.RecordQueueDequeue()
	q.observe()
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len() int {
	q.observe()
	return len(q.events)
}

func (q *InMemoryQueue) observe() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
