// Package worker drains the UI event queue into the session state.
//
// A single loop applies events strictly in arrival order. Interaction
// state transitions are not commutative, so there is no pool.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/marquee/internal/adapters/mq/queue"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Event is what the loop reads off the queue.
type Event = queue.Event

// Applier applies one UI event to the session it targets.
type Applier interface {
	Apply(ctx context.Context, e model.UIEvent) error
}

// Queue defines how the loop receives events.
type Queue interface {
	Dequeue() <-chan Event
}

// acker is implemented by queues that track consumption.
type acker interface {
	Ack()
}

// EventLoop applies queued events one at a time.
type EventLoop struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewEventLoop creates a loop over q that hands every event to a.
func NewEventLoop(q Queue, a Applier, opts ...Option) *EventLoop {
	w := &EventLoop{
		queue:    q,
		applier:  a,
		name:     "event-loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	return w
}

// Run processes events until ctx is cancelled, Shutdown is called or the
// queue channel is closed and drained.
func (w *EventLoop) Run(ctx context.Context) {
	defer close(w.done)

	metrics.UpdateWorkerCount(1)
	defer metrics.UpdateWorkerCount(0)

	w.logger.Info(ctx, "event loop started", logger.String("name", w.name))
	defer w.logger.Info(ctx, "event loop stopped", logger.String("name", w.name))

	events := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, events)
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, e)
		}
	}
}

// drain applies whatever is already buffered without waiting for more.
func (w *EventLoop) drain(ctx context.Context, events <-chan Event) {
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, e)
		default:
			return
		}
	}
}

func (w *EventLoop) process(ctx context.Context, e Event) {
	if a, ok := w.queue.(acker); ok {
		a.Ack()
	}
	if !e.At.IsZero() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(e.At).Microseconds()) / 1000.0)
	}

	start := time.Now()
	err := w.applier.Apply(ctx, e)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.RecordUIEvent(string(e.Kind))

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply")
		w.logger.Warn(ctx, "event not applied",
			logger.String("name", w.name),
			logger.String("session", e.Session),
			logger.String("kind", string(e.Kind)),
			logger.Error(err))
	}
}

// Shutdown asks the loop to apply buffered events and stop. It waits for
// the loop to finish or for ctx or an internal timeout to expire.
func (w *EventLoop) Shutdown(ctx context.Context) error {
	const op = "worker.shutdown"

	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%s: timed out after %s", op, shutdownTimeout)
	}
}

// Done is closed when Run returns.
func (w *EventLoop) Done() <-chan struct{} { return w.done }
