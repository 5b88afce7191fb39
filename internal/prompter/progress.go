package prompter

import (
	"time"

	"github.com/andyrewlee/tprompt/internal/perf"
)

// DefaultPublishInterval bounds how often automatic progress is published.
const DefaultPublishInterval = 200 * time.Millisecond

// Reporter publishes normalized progress at a bounded rate. Automatic updates
// go through Tick; manual moves use Now and bypass the window.
type Reporter struct {
	throttle *Throttle
	sample   func() (float64, bool)
	publish  func(p float64, ok bool)

	value float64
	has   bool
}

// NewReporter returns a reporter that reads progress from sample and hands
// it to publish. A trailing publish guarantees the last automatic position is
// eventually reported, so reaching the end always shows full progress. When
// sample stops reporting a value, publish gets ok=false once.
func NewReporter(clock Clock, sched Scheduler, interval time.Duration, sample func() (float64, bool), publish func(p float64, ok bool)) *Reporter {
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	return &Reporter{
		throttle: NewThrottle(clock, sched, interval, true),
		sample:   sample,
		publish:  publish,
	}
}

// Tick publishes if the rate window allows, otherwise defers to the window end.
func (r *Reporter) Tick() {
	r.throttle.Do(r.emit)
}

// Now publishes immediately.
func (r *Reporter) Now() {
	r.throttle.Force(r.emit)
}

// Reset publishes zero progress immediately and drops any deferred publish.
func (r *Reporter) Reset() {
	r.throttle.Force(func() {
		r.value = 0
		r.has = false
		r.deliver(0, true)
	})
}

// Flush publishes a deferred value now instead of at the window end.
func (r *Reporter) Flush() {
	r.throttle.Flush()
}

// Cancel drops a deferred publish.
func (r *Reporter) Cancel() {
	r.throttle.Cancel()
}

// Pending reports whether a deferred publish is scheduled.
func (r *Reporter) Pending() bool {
	return r.throttle.Pending()
}

// Value returns the last published progress.
func (r *Reporter) Value() (float64, bool) {
	return r.value, r.has
}

func (r *Reporter) emit() {
	p, ok := r.sample()
	if !ok {
		if r.has {
			r.value, r.has = 0, false
			r.deliver(0, false)
		}
		return
	}
	r.value = p
	r.has = true
	r.deliver(p, true)
}

func (r *Reporter) deliver(p float64, ok bool) {
	perf.Count("progress_publish", 1)
	if r.publish != nil {
		r.publish(p, ok)
	}
}
