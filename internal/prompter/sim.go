package prompter

import (
	"sort"
	"time"
)

// Sim is a deterministic Clock and Scheduler. Time only moves when Advance or
// Step is called. Frames are delivered on a fixed grid anchored at the start
// time, the way a display refreshes regardless of when work was requested.
type Sim struct {
	now      time.Time
	origin   time.Time
	interval time.Duration
	seq      uint64

	frames     []*simFrame
	timers     []*simTimer
	frameCount int
}

type simFrame struct {
	id        uint64
	fn        func(time.Time)
	cancelled bool
}

type simTimer struct {
	id uint64
	at time.Time
	fn func()
}

// NewSim returns a simulator starting at start with frames every frameInterval.
// A non-positive interval defaults to 16ms.
func NewSim(start time.Time, frameInterval time.Duration) *Sim {
	if frameInterval <= 0 {
		frameInterval = 16 * time.Millisecond
	}
	return &Sim{now: start, origin: start, interval: frameInterval}
}

// Now returns the simulated time.
func (s *Sim) Now() time.Time { return s.now }

// FrameInterval returns the frame grid spacing.
func (s *Sim) FrameInterval() time.Duration { return s.interval }

// FrameCount returns how many frame batches have been delivered.
func (s *Sim) FrameCount() int { return s.frameCount }

// Pending reports outstanding frame requests and timers.
func (s *Sim) Pending() (frames, timers int) {
	return len(s.frames), len(s.timers)
}

// RequestFrame implements Scheduler.
func (s *Sim) RequestFrame(fn func(now time.Time)) CancelFunc {
	s.seq++
	f := &simFrame{id: s.seq, fn: fn}
	s.frames = append(s.frames, f)
	return func() {
		f.cancelled = true
		for i, pending := range s.frames {
			if pending == f {
				s.frames = append(s.frames[:i], s.frames[i+1:]...)
				return
			}
		}
	}
}

// AfterFunc implements Scheduler.
func (s *Sim) AfterFunc(d time.Duration, fn func()) CancelFunc {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &simTimer{id: s.seq, at: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	sort.SliceStable(s.timers, func(i, j int) bool {
		return s.timers[i].at.Before(s.timers[j].at)
	})
	return func() {
		for i, pending := range s.timers {
			if pending == t {
				s.timers = append(s.timers[:i], s.timers[i+1:]...)
				return
			}
		}
	}
}

// Advance moves time forward by d, firing timers at their deadlines and
// frames on the grid while any frame is requested. A timer due at the same
// instant as a frame fires first.
func (s *Sim) Advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		var timerAt, frameAt time.Time
		haveTimer := len(s.timers) > 0 && !s.timers[0].at.After(target)
		if haveTimer {
			timerAt = s.timers[0].at
		}
		haveFrame := false
		if len(s.frames) > 0 {
			frameAt = s.nextFrameTime()
			haveFrame = !frameAt.After(target)
		}

		switch {
		case haveTimer && (!haveFrame || !frameAt.Before(timerAt)):
			s.fireTimer(timerAt)
		case haveFrame:
			s.fireFrames(frameAt)
		default:
			s.now = target
			return
		}
	}
}

// Step moves time forward by dt, fires any timers that came due, then
// delivers one frame batch at the new time. It models an irregular display
// where each call is one refresh.
func (s *Sim) Step(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := s.now.Add(dt)
	for len(s.timers) > 0 && !s.timers[0].at.After(target) {
		s.fireTimer(s.timers[0].at)
	}
	s.now = target
	if len(s.frames) > 0 {
		s.fireFrames(target)
	}
}

func (s *Sim) nextFrameTime() time.Time {
	elapsed := s.now.Sub(s.origin)
	if elapsed < 0 {
		return s.origin
	}
	k := elapsed/s.interval + 1
	return s.origin.Add(k * s.interval)
}

func (s *Sim) fireTimer(at time.Time) {
	t := s.timers[0]
	s.timers = s.timers[1:]
	if at.After(s.now) {
		s.now = at
	}
	t.fn()
}

func (s *Sim) fireFrames(at time.Time) {
	s.now = at
	batch := s.frames
	s.frames = nil
	s.frameCount++
	for _, f := range batch {
		if !f.cancelled {
			f.fn(at)
		}
	}
}
