// Package progress carries run updates from the engine goroutine to a
// display consumer (CLI renderer or embedding UI) without letting a slow
// consumer stall the run.
package progress

import "sync"

// Kind distinguishes update events.
type Kind int

const (
	// KindStatus is a free-form status line ("fetching records").
	KindStatus Kind = iota + 1
	// KindRecord reports completion of one record with running counts.
	KindRecord
	// KindSafety reports a safety-state transition (paused, stopped).
	KindSafety
)

// Event is one progress update.
type Event struct {
	Kind    Kind
	Current int
	Total   int
	Message string
}

// Queue is a thread-safe FIFO for progress events. It is unbounded so the
// publishing engine never blocks on a consumer; the signal channel lets a
// consumer wait without polling.
type Queue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered size 1, coalesces availability signals
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{
		events: make([]Event, 0, 32),
		signal: make(chan struct{}, 1),
	}
}

// Publish appends an event. Returns false if the queue is closed.
func (q *Queue) Publish(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryNext pops the front event without blocking. Returns false when empty.
func (q *Queue) TryNext() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available or the
// queue has closed. Pair with TryNext in a select loop.
func (q *Queue) Wait() <-chan struct{} {
	return q.signal
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue finished and wakes all waiters. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
