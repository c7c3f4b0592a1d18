package queue

import (
	"sync"

	"github.com/outpost-telemetry/outpost-go/internal/event"
)

// Queue is an unbounded FIFO of pending events, written by any number of
// producers and drained by a single consumer. Producers never block: there
// is no capacity limit, so a stalled consumer shows up as memory growth
// rather than backpressure.
type Queue struct {
	mu     sync.Mutex
	events []event.Event
	wake   chan struct{}
}

func New() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends e to the tail and signals the consumer.
func (q *Queue) Enqueue(e event.Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// DrainUpTo removes and returns at most n events from the head, in FIFO
// order. It returns fewer when the queue is shorter, and nil when it is
// empty or n is not positive.
func (q *Queue) DrainUpTo(n int) []event.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || len(q.events) == 0 {
		return nil
	}
	if n > len(q.events) {
		n = len(q.events)
	}

	drained := make([]event.Event, n)
	copy(drained, q.events[:n])
	q.events = q.events[n:]
	if len(q.events) == 0 {
		// Drop the backing array so drained events can be collected.
		q.events = nil
	}
	return drained
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// IsEmpty is a snapshot check; the queue may grow immediately after.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Wake returns the channel signalled on every enqueue. The signal is
// coalesced: one pending wakeup can stand for many enqueues, and a stale
// wakeup may arrive after the queue was drained, so consumers must re-check
// queue state after waking.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}
