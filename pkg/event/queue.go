package event

import (
	"sync"
	"time"
)

// Queue is the event queue consumed by the adapter state machine.
// Producers may post from any goroutine; a single consumer drains it.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	items    []Event
	deferred []Event

	// Pending delayed deliveries, keyed by event type. A timer whose
	// pointer has been removed from its slice is considered cancelled;
	// its callback checks membership before delivering.
	timers map[Type][]*time.Timer

	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{
		timers: make(map[Type][]*time.Timer),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Post appends an event to the tail of the queue.
func (q *Queue) Post(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, ev)
	q.cond.Signal()
}

// PostDelayed schedules an event for delivery no earlier than d from now.
// Delivery order among same-type repeats is FIFO.
func (q *Queue) PostDelayed(ev Event, d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	var tm *time.Timer
	tm = time.AfterFunc(d, func() {
		q.deliverDelayed(ev, tm)
	})
	q.timers[ev.Type] = append(q.timers[ev.Type], tm)
}

// deliverDelayed moves a fired delayed event onto the queue, unless the
// timer was cancelled between firing and acquiring the lock.
func (q *Queue) deliverDelayed(ev Event, tm *time.Timer) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.timers[ev.Type]
	found := false
	for i, t := range pending {
		if t == tm {
			q.timers[ev.Type] = append(pending[:i], pending[i+1:]...)
			found = true
			break
		}
	}
	if !found || q.closed {
		return
	}
	q.items = append(q.items, ev)
	q.cond.Signal()
}

// Cancel removes every not-yet-delivered event of the given type: queued
// entries as well as pending delayed deliveries.
func (q *Queue) Cancel(t Type) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, tm := range q.timers[t] {
		tm.Stop()
	}
	delete(q.timers, t)

	kept := q.items[:0]
	for _, ev := range q.items {
		if ev.Type != t {
			kept = append(kept, ev)
		}
	}
	q.items = kept
}

// Defer parks the event for redelivery after the consumer's next state
// transition. Only the consumer may call Defer, from within processing of
// the current event.
func (q *Queue) Defer(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.deferred = append(q.deferred, ev)
}

// ReplayDeferred moves all deferred events to the front of the queue,
// preserving their relative order. The consumer calls this immediately
// after a state transition.
func (q *Queue) ReplayDeferred() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.deferred) == 0 {
		return
	}
	q.items = append(q.deferred, q.items...)
	q.deferred = nil
	q.cond.Signal()
}

// Next blocks until an event is available and returns it. It returns
// ok=false once the queue has been closed.
func (q *Queue) Next() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return Event{}, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev, true
}

// Close shuts the queue down. Pending and deferred events are dropped,
// delayed timers are stopped, and the consumer blocked in Next is released.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	for _, pending := range q.timers {
		for _, tm := range pending {
			tm.Stop()
		}
	}
	q.timers = make(map[Type][]*time.Timer)
	q.items = nil
	q.deferred = nil
	q.cond.Broadcast()
}

// Len returns the number of queued (not deferred, not delayed) events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
