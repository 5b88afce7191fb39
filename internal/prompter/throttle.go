package prompter

import "time"

// Throttle runs at most one call per interval. The first call in a window runs
// immediately. With trailing enabled, calls made inside the window collapse
// into one deferred call at the end of the window; the last one wins.
type Throttle struct {
	clock    Clock
	sched    Scheduler
	interval time.Duration
	trailing bool

	last    time.Time
	pending func()
	slot    timerSlot
}

// NewThrottle returns a throttle with the given window.
func NewThrottle(clock Clock, sched Scheduler, interval time.Duration, trailing bool) *Throttle {
	return &Throttle{clock: clock, sched: sched, interval: interval, trailing: trailing}
}

// Do runs fn now if the window is open and reports whether it ran.
func (t *Throttle) Do(fn func()) bool {
	now := t.clock.Now()
	if t.open(now) {
		t.run(now, fn)
		return true
	}
	if !t.trailing {
		return false
	}
	t.pending = fn
	if !t.slot.active() {
		wait := t.interval - now.Sub(t.last)
		t.slot.set(t.sched.AfterFunc(wait, t.fire))
	}
	return false
}

// Force runs fn immediately regardless of the window and starts a new window.
// A pending trailing call is dropped.
func (t *Throttle) Force(fn func()) {
	t.run(t.clock.Now(), fn)
}

// Cancel drops a pending trailing call.
func (t *Throttle) Cancel() {
	t.slot.stop()
	t.pending = nil
}

// Flush runs a pending trailing call now and reports whether one ran.
func (t *Throttle) Flush() bool {
	if t.pending == nil {
		return false
	}
	t.slot.stop()
	t.fire()
	return true
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle) Pending() bool {
	return t.slot.active()
}

func (t *Throttle) open(now time.Time) bool {
	if t.last.IsZero() || now.Before(t.last) {
		return true
	}
	return now.Sub(t.last) >= t.interval
}

func (t *Throttle) run(now time.Time, fn func()) {
	t.Cancel()
	t.last = now
	fn()
}

func (t *Throttle) fire() {
	t.slot.clear()
	fn := t.pending
	t.pending = nil
	if fn == nil {
		return
	}
	t.last = t.clock.Now()
	fn()
}

// Debouncer delays a call until no new call has arrived for delay.
// The last call wins.
type Debouncer struct {
	sched   Scheduler
	delay   time.Duration
	pending func()
	slot    timerSlot
}

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger schedules fn, replacing any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.pending = fn
	d.slot.set(d.sched.AfterFunc(d.delay, d.fire))
}

// Flush runs the waiting call now, if any, and reports whether one ran.
func (d *Debouncer) Flush() bool {
	if d.pending == nil {
		return false
	}
	d.slot.stop()
	d.fire()
	return true
}

// Stop drops the waiting call.
func (d *Debouncer) Stop() {
	d.slot.stop()
	d.pending = nil
}

// Pending reports whether a call is waiting.
func (d *Debouncer) Pending() bool {
	return d.pending != nil
}

func (d *Debouncer) fire() {
	d.slot.clear()
	fn := d.pending
	d.pending = nil
	if fn != nil {
		fn()
	}
}
