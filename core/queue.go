package interview

import (
	"sync"

	"github.com/skillsage/voice-interview/core/events"
)

// eventQueue is an unbounded FIFO of events waiting to be applied. Pushing
// never blocks, so collaborators may post from any goroutine, including from
// inside calls made by the session.
type eventQueue struct {
	mu     sync.Mutex
	items  []events.Event
	ready  chan struct{}
	closed bool
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) Push(event events.Event) bool {
	if q == nil || event == nil {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, event)
	q.mu.Unlock()

	q.signal()
	return true
}

func (q *eventQueue) Pop() (events.Event, bool) {
	if q == nil {
		return nil, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	event := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return event, true
}

// TakeWhere removes and returns, in order, every queued event matching match.
func (q *eventQueue) TakeWhere(match func(events.Event) bool) []events.Event {
	if q == nil || match == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	var taken []events.Event
	remaining := q.items[:0]
	for _, event := range q.items {
		if match(event) {
			taken = append(taken, event)
		} else {
			remaining = append(remaining, event)
		}
	}
	clear(q.items[len(remaining):])
	q.items = remaining
	return taken
}

func (q *eventQueue) Clear() {
	if q == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.items)
	q.items = nil
}

// Close drops queued events and rejects further pushes.
func (q *eventQueue) Close() {
	if q == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	clear(q.items)
	q.items = nil
}

// Ready is signalled at least once after every push.
func (q *eventQueue) Ready() <-chan struct{} {
	return q.ready
}

func (q *eventQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
