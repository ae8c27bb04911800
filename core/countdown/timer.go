// Package countdown provides the per-question wall-clock countdown.
package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer counts down whole seconds at 1Hz. A Timer runs at most one countdown
// at a time: Start cancels the previous run.
//
// Callbacks are invoked with the timer's lock held so that a concurrent
// Cancel either happens before a callback or after it has returned. They must
// not call back into the Timer.
type Timer struct {
	clock clockwork.Clock

	mu      sync.Mutex
	run     uint64
	lastRun uint64
	stop    chan struct{}
}

func New(clock clockwork.Clock) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{clock: clock}
}

// Start begins counting down from durationSeconds. onTick receives every new
// remaining value, ending with 0, which is immediately followed by a single
// onExpire. Durations below one second expire on the first tick.
func (t *Timer) Start(durationSeconds int, onTick func(remaining int), onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()

	t.lastRun++
	run := t.lastRun
	stop := make(chan struct{})
	t.run = run
	t.stop = stop

	ticker := t.clock.NewTicker(time.Second)
	go t.count(run, ticker, stop, max(durationSeconds, 0), onTick, onExpire)
}

// Cancel stops the running countdown, if any. No callback of the cancelled
// run fires after Cancel returns.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run != 0
}

func (t *Timer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.run = 0
}

func (t *Timer) count(run uint64, ticker clockwork.Ticker, stop <-chan struct{}, remaining int, onTick func(int), onExpire func()) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if remaining > 0 {
				remaining--
			}
			if !t.deliver(run, remaining, onTick, onExpire) || remaining == 0 {
				return
			}
		}
	}
}

func (t *Timer) deliver(run uint64, remaining int, onTick func(int), onExpire func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.run != run {
		return false
	}

	if onTick != nil {
		onTick(remaining)
	}

	if remaining == 0 {
		// The run is over; forget it without closing stop since count
		// returns on its own.
		t.run = 0
		t.stop = nil
		if onExpire != nil {
			onExpire()
		}
	}

	return true
}
