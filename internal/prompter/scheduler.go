package prompter

import "time"

// CancelFunc cancels a scheduled callback. Calling it after the callback ran,
// or more than once, is a no-op.
type CancelFunc func()

// Scheduler delivers frame callbacks and one-shot timers on the caller's
// goroutine.
type Scheduler interface {
	// RequestFrame runs fn once on the next display frame.
	RequestFrame(fn func(now time.Time)) CancelFunc
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// timerSlot holds at most one outstanding callback.
type timerSlot struct {
	cancel CancelFunc
}

func (s *timerSlot) set(cancel CancelFunc) {
	s.stop()
	s.cancel = cancel
}

func (s *timerSlot) stop() {
	if s.cancel == nil {
		return
	}
	cancel := s.cancel
	s.cancel = nil
	cancel()
}

func (s *timerSlot) active() bool {
	return s.cancel != nil
}

// clear forgets the callback without cancelling it. Callbacks call this first
// since they have already fired.
func (s *timerSlot) clear() {
	s.cancel = nil
}
