package overlay

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/tprompt/internal/prompter"
)

// DefaultFrameInterval paces the scroll loop at roughly 30 fps, which is
// as fast as a terminal redraw is useful.
const DefaultFrameInterval = time.Second / 30

type frameMsg struct {
	at time.Time
}

type timerMsg struct {
	id uint64
}

type frameRequest struct {
	fn        func(time.Time)
	cancelled bool
}

// teaScheduler runs controller callbacks on the bubbletea event loop. Work is
// queued as commands and handed to the runtime by drain at the end of each
// Update, so callbacks always run on the Update goroutine.
type teaScheduler struct {
	interval time.Duration

	frames      []*frameRequest
	frameQueued bool
	timers      map[uint64]func()
	nextID      uint64
	pendingCmds []tea.Cmd
}

var _ prompter.Scheduler = (*teaScheduler)(nil)

func newTeaScheduler(interval time.Duration) *teaScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &teaScheduler{
		interval: interval,
		timers:   make(map[uint64]func()),
	}
}

func (s *teaScheduler) RequestFrame(fn func(now time.Time)) prompter.CancelFunc {
	req := &frameRequest{fn: fn}
	s.frames = append(s.frames, req)
	if !s.frameQueued {
		s.frameQueued = true
		s.pendingCmds = append(s.pendingCmds, tea.Tick(s.interval, func(t time.Time) tea.Msg {
			return frameMsg{at: t}
		}))
	}
	return func() { req.cancelled = true }
}

func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) prompter.CancelFunc {
	s.nextID++
	id := s.nextID
	s.timers[id] = fn
	s.pendingCmds = append(s.pendingCmds, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
	return func() { delete(s.timers, id) }
}

// handle runs the callbacks a scheduler message is due for. It reports
// whether msg belonged to the scheduler.
func (s *teaScheduler) handle(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case frameMsg:
		s.frameQueued = false
		batch := s.frames
		s.frames = nil
		for _, req := range batch {
			if !req.cancelled {
				req.fn(msg.at)
			}
		}
		return true
	case timerMsg:
		fn, ok := s.timers[msg.id]
		if !ok {
			return true
		}
		delete(s.timers, msg.id)
		fn()
		return true
	}
	return false
}

// pending reports queued frame requests and live timers.
func (s *teaScheduler) pending() (frames, timers int) {
	for _, req := range s.frames {
		if !req.cancelled {
			frames++
		}
	}
	return frames, len(s.timers)
}

// drain hands queued ticks to the runtime.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.pendingCmds) == 0 {
		return nil
	}
	cmds := s.pendingCmds
	s.pendingCmds = nil
	return tea.Batch(cmds...)
}
