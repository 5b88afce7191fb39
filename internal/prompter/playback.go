package prompter

import (
	"time"

	"github.com/andyrewlee/tprompt/internal/perf"
)

// Playback integrates scroll position over frame deltas while running.
// Every position it writes passes through Bounds.Clamp.
type Playback struct {
	clock Clock
	sched Scheduler

	bounds   Bounds
	position float64
	speed    float64

	running   bool
	lastFrame time.Time
	lastDelta time.Duration
	frame     timerSlot

	// allow is consulted on every frame; integration only happens while it
	// returns true.
	allow  func() bool
	onStep func(pos float64)
}

// NewPlayback returns a stopped playback at position 0.
func NewPlayback(clock Clock, sched Scheduler, speed float64) *Playback {
	return &Playback{clock: clock, sched: sched, speed: speed}
}

// Start begins integrating on the next frame. The frame timestamp is taken
// fresh so time spent stopped never turns into movement.
func (p *Playback) Start() {
	if p.running {
		return
	}
	p.running = true
	p.lastFrame = p.clock.Now()
	p.schedule()
}

// Stop suspends the frame loop entirely.
func (p *Playback) Stop() {
	p.running = false
	p.frame.stop()
}

// Running reports whether playback wants frames.
func (p *Playback) Running() bool { return p.running }

// Looping reports whether a frame callback is outstanding.
func (p *Playback) Looping() bool { return p.frame.active() }

// Position returns the current offset.
func (p *Playback) Position() float64 { return p.position }

// Bounds returns the current measurements.
func (p *Playback) Bounds() Bounds { return p.bounds }

// LastDelta returns the delta integrated on the most recent frame.
func (p *Playback) LastDelta() time.Duration { return p.lastDelta }

// SetSpeed sets the integration rate in px/s.
func (p *Playback) SetSpeed(pxPerSec float64) { p.speed = pxPerSec }

// SetBounds replaces the measurements and re-clamps the position against them.
func (p *Playback) SetBounds(b Bounds) {
	p.bounds = b
	if b.Measured() {
		p.position = b.Clamp(p.position)
	}
	p.kick()
}

// Seek clamps pos into range, moves there and returns the result.
func (p *Playback) Seek(pos float64) float64 {
	p.position = p.bounds.Clamp(pos)
	p.kick()
	return p.position
}

// Reset moves back to the top.
func (p *Playback) Reset() {
	p.position = 0
	p.kick()
}

// kick restarts a loop that went quiet at the end of content once there is
// room to scroll again.
func (p *Playback) kick() {
	if !p.running || p.frame.active() {
		return
	}
	if p.bounds.Measured() && p.position >= p.bounds.MaxScroll() {
		return
	}
	p.lastFrame = p.clock.Now()
	p.schedule()
}

func (p *Playback) schedule() {
	if p.frame.active() {
		return
	}
	p.frame.set(p.sched.RequestFrame(p.step))
}

func (p *Playback) step(now time.Time) {
	p.frame.clear()
	if !p.running {
		return
	}
	if p.allow != nil && !p.allow() {
		p.running = false
		return
	}

	delta := now.Sub(p.lastFrame)
	if delta < 0 {
		delta = 0
	}
	p.lastFrame = now
	p.lastDelta = delta

	if !p.bounds.Measured() {
		p.schedule()
		return
	}
	limit := p.bounds.MaxScroll()
	if p.position >= limit {
		return
	}

	perf.Record("frame_delta", delta)
	p.position = p.bounds.Clamp(p.position + p.speed*delta.Seconds())
	if p.onStep != nil {
		p.onStep(p.position)
	}
	if p.position < limit {
		p.schedule()
	}
}
