package interview

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/skillsage/voice-interview/core/countdown"
)

// countdownTimer is the per-question countdown a session drives.
type countdownTimer interface {
	Start(durationSeconds int, onTick func(remaining int), onExpire func())
	Cancel()
	IsRunning() bool
}

var _ countdownTimer = (*countdown.Timer)(nil)

// delayScheduler runs fixed delays. after calls f once d has elapsed unless
// the returned stop is called first.
type delayScheduler interface {
	after(d time.Duration, f func()) (stop func() bool)
}

type clockScheduler struct {
	clock clockwork.Clock
}

func (c clockScheduler) after(d time.Duration, f func()) func() bool {
	timer := c.clock.AfterFunc(d, f)
	return timer.Stop
}

// pendingDelays tracks scheduled delays so they can be stopped together.
type pendingDelays struct {
	stops []func() bool
}

func (p *pendingDelays) add(stop func() bool) {
	p.stops = append(p.stops, stop)
}

func (p *pendingDelays) stopAll() {
	for _, stop := range p.stops {
		stop()
	}
	p.stops = nil
}
