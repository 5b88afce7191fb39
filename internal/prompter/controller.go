package prompter

import (
	"fmt"
	"strings"
	"time"

	"github.com/andyrewlee/tprompt/internal/logging"
)

const (
	// DefaultRewindFraction is the share of the viewport a rewind backs up.
	DefaultRewindFraction = 1.0 / 3.0
	// DefaultStepPx is the distance of one manual step.
	DefaultStepPx = 80.0
)

// Options configures a Controller. Scheduler is required.
type Options struct {
	Clock     Clock
	Scheduler Scheduler

	Speed  SpeedPreset
	Speeds map[SpeedPreset]float64

	Countdown         int
	CountdownInterval time.Duration
	PublishInterval   time.Duration

	RewindFraction float64
	StepPx         float64
}

// Controller owns one teleprompter: the session phase, the playback clock
// and the progress reporter. It is not safe for concurrent use.
type Controller struct {
	clock Clock
	sched Scheduler

	speeds map[SpeedPreset]float64
	preset SpeedPreset

	countdownFrom     int
	countdownInterval time.Duration
	rewindFraction    float64
	stepPx            float64

	phase         Phase
	remaining     int
	countdown     timerSlot
	content       string
	pausedByHover bool

	playback *Playback
	reporter *Reporter

	debouncers []*Debouncer
	subs       []subscriber
	nextSubID  int
}

// NewController returns an idle controller with no script loaded.
func NewController(opts Options) *Controller {
	if opts.Scheduler == nil {
		panic("prompter: Options.Scheduler is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	speeds := DefaultSpeeds()
	for preset, v := range opts.Speeds {
		if preset.Valid() && finite(v) && v > 0 {
			speeds[preset] = v
		}
	}
	preset := opts.Speed
	if !preset.Valid() {
		preset = DefaultSpeed
	}

	c := &Controller{
		clock:             clock,
		sched:             opts.Scheduler,
		speeds:            speeds,
		preset:            preset,
		countdownFrom:     opts.Countdown,
		countdownInterval: opts.CountdownInterval,
		rewindFraction:    opts.RewindFraction,
		stepPx:            opts.StepPx,
		phase:             PhaseIdle,
	}
	if c.countdownFrom <= 0 {
		c.countdownFrom = DefaultCountdown
	}
	if c.countdownInterval <= 0 {
		c.countdownInterval = CountdownInterval
	}
	if !finite(c.rewindFraction) || c.rewindFraction <= 0 {
		c.rewindFraction = DefaultRewindFraction
	}
	if !finite(c.stepPx) || c.stepPx <= 0 {
		c.stepPx = DefaultStepPx
	}

	c.playback = NewPlayback(clock, opts.Scheduler, speeds[preset])
	c.playback.allow = func() bool { return c.phase == PhasePlaying }
	c.playback.onStep = c.onFrame
	c.reporter = NewReporter(clock, opts.Scheduler, opts.PublishInterval, c.Progress, c.onPublish)
	return c
}

// Subscribe registers fn for every event and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.nextSubID++
	id := c.nextSubID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// NewDebouncer returns a debouncer tied to this controller's sessions:
// stopping a session runs its waiting call immediately so nothing is left
// scheduled.
func (c *Controller) NewDebouncer(delay time.Duration) *Debouncer {
	d := NewDebouncer(c.sched, delay)
	c.debouncers = append(c.debouncers, d)
	return d
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase { return c.phase }

// Countdown returns the remaining countdown ticks, or 0 outside Countdown.
func (c *Controller) Countdown() int {
	if c.phase != PhaseCountdown {
		return 0
	}
	return c.remaining
}

// Playing reports whether the scroll clock is integrating.
func (c *Controller) Playing() bool {
	return c.phase == PhasePlaying && c.playback.Running()
}

// PausedByHover reports whether the current pause came from the pointer.
func (c *Controller) PausedByHover() bool { return c.pausedByHover }

// Content returns the loaded script.
func (c *Controller) Content() string { return c.content }

// Position returns the current scroll offset in pixels.
func (c *Controller) Position() float64 { return c.playback.Position() }

// Bounds returns the last measurements.
func (c *Controller) Bounds() Bounds { return c.playback.Bounds() }

// Progress returns the current progress, computed from position and bounds.
func (c *Controller) Progress() (float64, bool) {
	return c.playback.Bounds().Progress(c.playback.Position())
}

// PublishedProgress returns the last progress value sent to subscribers.
func (c *Controller) PublishedProgress() (float64, bool) {
	return c.reporter.Value()
}

// Speed returns the active preset.
func (c *Controller) Speed() SpeedPreset { return c.preset }

// SpeedPxPerSec returns the active speed.
func (c *Controller) SpeedPxPerSec() float64 { return c.speeds[c.preset] }

// StartSession loads content if it differs and begins a countdown from the
// top. Any session in progress is restarted.
func (c *Controller) StartSession(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrNoScript
	}
	if content != c.content {
		c.setContent(content)
	}
	return c.beginCountdown()
}

// StopSession ends the session: timers are cancelled, the script is cleared
// and position and progress return to zero.
func (c *Controller) StopSession() {
	if c.phase == PhaseStopped || (c.phase == PhaseIdle && c.content == "") {
		return
	}
	// Observers see the last position reached before the reset to zero.
	c.reporter.Flush()
	c.halt()
	c.flushDebouncers()
	c.pausedByHover = false
	c.remaining = 0

	c.setContent("")
	c.playback.Reset()
	c.emit(PositionChanged{Position: 0})
	c.reporter.Reset()
	_ = c.setPhase(PhaseStopped)
}

// Close publishes any deferred progress, then cancels every outstanding
// callback without changing phase.
func (c *Controller) Close() {
	c.reporter.Flush()
	c.halt()
	c.flushDebouncers()
}

// LoadScript replaces the script. A running session keeps its phase; a
// stopped controller becomes idle.
func (c *Controller) LoadScript(content string) {
	c.setContent(content)
	if c.phase == PhaseStopped && content != "" {
		_ = c.setPhase(PhaseIdle)
	}
}

// SetSpeed switches to preset p. Unknown presets are ignored.
func (c *Controller) SetSpeed(p SpeedPreset) {
	if !p.Valid() {
		logging.Warn("prompter: ignoring unknown speed preset %d", int(p))
		return
	}
	c.preset = p
	c.playback.SetSpeed(c.speeds[p])
	c.emit(SpeedChanged{Preset: p, PxPerSec: c.speeds[p]})
}

// CycleSpeed advances to the next preset and returns it.
func (c *Controller) CycleSpeed() SpeedPreset {
	c.SetSpeed(c.preset.Next())
	return c.preset
}

// Toggle pauses or resumes playback. During the countdown it cancels back to
// Idle; when idle with a script it starts a session.
func (c *Controller) Toggle() {
	switch c.phase {
	case PhasePlaying:
		c.pause(false)
	case PhasePaused:
		c.resume()
	case PhaseCountdown:
		c.countdown.stop()
		c.remaining = 0
		_ = c.setPhase(PhaseIdle)
	case PhaseIdle:
		if c.content != "" {
			_ = c.beginCountdown()
		}
	}
}

// HoverPause pauses playback because the pointer entered the content.
func (c *Controller) HoverPause() {
	if c.phase != PhasePlaying {
		return
	}
	c.pause(true)
}

// HoverResume resumes playback only if the pause came from HoverPause.
func (c *Controller) HoverResume() {
	if c.phase != PhasePaused || !c.pausedByHover {
		return
	}
	c.resume()
}

// RewindByFraction moves back by f viewport heights.
func (c *Controller) RewindByFraction(f float64) {
	if !finite(f) || f < 0 {
		logging.Warn("prompter: ignoring rewind fraction %v", f)
		return
	}
	b := c.playback.Bounds()
	if !b.Measured() {
		return
	}
	c.seek(c.playback.Position() - b.ViewportHeight*f)
}

// Rewind moves back by the configured fraction.
func (c *Controller) Rewind() {
	c.RewindByFraction(c.rewindFraction)
}

// StepUp moves back by the configured step.
func (c *Controller) StepUp() { c.StepBy(-c.stepPx) }

// StepDown moves forward by the configured step.
func (c *Controller) StepDown() { c.StepBy(c.stepPx) }

// StepBy moves by delta pixels.
func (c *Controller) StepBy(delta float64) {
	if !finite(delta) {
		logging.Warn("prompter: ignoring step %v", delta)
		return
	}
	if !c.playback.Bounds().Measured() {
		return
	}
	c.seek(c.playback.Position() + delta)
}

// SetPosition jumps to an absolute offset.
func (c *Controller) SetPosition(pos float64) {
	if !finite(pos) {
		logging.Warn("prompter: ignoring position %v", pos)
		return
	}
	if !c.playback.Bounds().Measured() {
		return
	}
	c.seek(pos)
}

// SetMetrics records new container measurements in pixels. The position is
// re-clamped against them and progress is republished.
func (c *Controller) SetMetrics(contentHeight, viewportHeight float64) {
	if !finite(contentHeight) || !finite(viewportHeight) || contentHeight < 0 || viewportHeight < 0 {
		logging.Warn("prompter: ignoring metrics content=%v viewport=%v", contentHeight, viewportHeight)
		return
	}
	b := Bounds{ContentHeight: contentHeight, ViewportHeight: viewportHeight}
	if b == c.playback.Bounds() {
		return
	}
	before := c.playback.Position()
	c.playback.SetBounds(b)
	if after := c.playback.Position(); after != before {
		c.emit(PositionChanged{Position: after})
	}
	c.reporter.Now()
}

// Handle dispatches a typed command.
func (c *Controller) Handle(cmd Command) error {
	switch cmd := cmd.(type) {
	case LoadScript:
		c.LoadScript(cmd.Content)
	case StartCountdown:
		return c.StartSession(c.content)
	case TogglePlay:
		c.Toggle()
	case CycleSpeed:
		c.CycleSpeed()
	case Rewind:
		c.Rewind()
	case ScrollUp:
		c.StepUp()
	case ScrollDown:
		c.StepDown()
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return nil
}

func (c *Controller) beginCountdown() error {
	c.halt()
	c.pausedByHover = false
	c.playback.Reset()
	c.emit(PositionChanged{Position: 0})
	c.reporter.Reset()

	c.remaining = c.countdownFrom
	if err := c.setPhase(PhaseCountdown); err != nil {
		return err
	}
	c.countdown.set(c.sched.AfterFunc(c.countdownInterval, c.tick))
	return nil
}

func (c *Controller) tick() {
	c.countdown.clear()
	if c.phase != PhaseCountdown {
		return
	}
	c.remaining--
	if c.remaining > 0 {
		_ = c.setPhase(PhaseCountdown)
		c.countdown.set(c.sched.AfterFunc(c.countdownInterval, c.tick))
		return
	}
	c.remaining = 0
	if err := c.setPhase(PhasePlaying); err != nil {
		return
	}
	c.playback.Start()
}

func (c *Controller) pause(byHover bool) {
	c.playback.Stop()
	c.pausedByHover = byHover
	_ = c.setPhase(PhasePaused)
}

func (c *Controller) resume() {
	c.pausedByHover = false
	if err := c.setPhase(PhasePlaying); err != nil {
		return
	}
	c.playback.Start()
}

// halt cancels the frame loop, the countdown and any deferred publish.
func (c *Controller) halt() {
	c.playback.Stop()
	c.countdown.stop()
	c.reporter.Cancel()
}

func (c *Controller) flushDebouncers() {
	for _, d := range c.debouncers {
		d.Flush()
	}
}

func (c *Controller) setContent(content string) {
	c.content = content
	// Old measurements describe the old content.
	c.playback.SetBounds(Bounds{})
	c.emit(ContentChanged{Content: content})
}

func (c *Controller) seek(pos float64) {
	next := c.playback.Seek(pos)
	c.emit(PositionChanged{Position: next, Manual: true})
	c.reporter.Now()
}

func (c *Controller) setPhase(to Phase) error {
	from := c.phase
	if !canTransition(from, to) {
		err := fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, from, to)
		logging.Warn("prompter: %v", err)
		return err
	}
	c.phase = to
	logging.Debug("prompter: phase %s -> %s (countdown=%d)", from, to, c.Countdown())
	c.emit(PhaseChanged{From: from, To: to, Countdown: c.Countdown()})
	return nil
}

func (c *Controller) onFrame(pos float64) {
	c.emit(PositionChanged{Position: pos})
	c.reporter.Tick()
}

func (c *Controller) onPublish(p float64, ok bool) {
	c.emit(ProgressPublished{Progress: p, Absent: !ok, At: c.clock.Now()})
}

func (c *Controller) emit(ev Event) {
	if len(c.subs) == 0 {
		return
	}
	subs := append([]subscriber(nil), c.subs...)
	for _, sub := range subs {
		sub.fn(ev)
	}
}
