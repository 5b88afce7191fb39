package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/andyrewlee/tprompt/internal/prompter"
)

// CompletedThreshold is the furthest progress that counts as reading to the end.
const CompletedThreshold = 0.999

// Describer reports the script and speed of the session being recorded.
type Describer func() (scriptID, title, speed string)

// Recorder turns controller events into Session records. A session opens when
// a countdown starts, counts once playback begins, and is saved when the
// controller stops or Flush is called. Countdowns cancelled before playback
// are not recorded.
type Recorder struct {
	now      func() time.Time
	describe Describer
	save     func(Session)

	cur     *Session
	reached bool
}

// NewRecorder builds a recorder. save runs on the caller's goroutine; wrap it
// to move database writes elsewhere.
func NewRecorder(now func() time.Time, describe Describer, save func(Session)) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now, describe: describe, save: save}
}

// Observe consumes one controller event.
func (r *Recorder) Observe(ev prompter.Event) {
	switch ev := ev.(type) {
	case prompter.PhaseChanged:
		r.onPhase(ev)
	case prompter.ProgressPublished:
		if r.cur != nil && r.reached && !ev.Absent && ev.Progress > r.cur.MaxProgress {
			r.cur.MaxProgress = ev.Progress
		}
	case prompter.SpeedChanged:
		if r.cur != nil {
			r.cur.Speed = ev.Preset.String()
		}
	}
}

// Active reports whether a session is open.
func (r *Recorder) Active() bool { return r.cur != nil }

// Flush saves the open session, if playback ever began.
func (r *Recorder) Flush() {
	r.finish()
}

func (r *Recorder) onPhase(ev prompter.PhaseChanged) {
	switch ev.To {
	case prompter.PhaseCountdown:
		if ev.From == prompter.PhaseCountdown {
			return
		}
		r.finish()
		r.begin()
	case prompter.PhasePlaying:
		if r.cur == nil {
			r.begin()
		}
		r.reached = true
	case prompter.PhaseIdle:
		if ev.From == prompter.PhaseCountdown && !r.reached {
			r.cur = nil
		}
	case prompter.PhaseStopped:
		r.finish()
	}
}

func (r *Recorder) begin() {
	session := &Session{
		ID:        uuid.NewString(),
		StartedAt: r.now(),
	}
	if r.describe != nil {
		session.ScriptID, session.Title, session.Speed = r.describe()
	}
	r.cur = session
	r.reached = false
}

func (r *Recorder) finish() {
	cur, reached := r.cur, r.reached
	r.cur, r.reached = nil, false
	if cur == nil || !reached {
		return
	}
	cur.EndedAt = r.now()
	cur.Completed = cur.MaxProgress >= CompletedThreshold
	if r.save != nil {
		r.save(*cur)
	}
}
