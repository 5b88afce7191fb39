package prompter

import (
	"errors"
	"math"
	"testing"
	"time"
)

const testScript = "# Hi\n\nHello there, this is the script."

type eventLog struct {
	events []Event
}

func (l *eventLog) record(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) reset() { l.events = nil }

func (l *eventLog) publishes() int {
	n := 0
	for _, ev := range l.events {
		if _, ok := ev.(ProgressPublished); ok {
			n++
		}
	}
	return n
}

func (l *eventLog) phases() []PhaseChanged {
	var out []PhaseChanged
	for _, ev := range l.events {
		if pc, ok := ev.(PhaseChanged); ok {
			out = append(out, pc)
		}
	}
	return out
}

func newTestController(t *testing.T, frame time.Duration, opts Options) (*Controller, *Sim, *eventLog) {
	t.Helper()
	sim := NewSim(simStart, frame)
	opts.Clock = sim
	opts.Scheduler = sim
	c := NewController(opts)
	log := &eventLog{}
	c.Subscribe(log.record)
	return c, sim, log
}

// startPlaying runs a session through its countdown with the given metrics.
func startPlaying(t *testing.T, c *Controller, sim *Sim, content, viewport float64) {
	t.Helper()
	if err := c.StartSession(testScript); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	c.SetMetrics(content, viewport)
	sim.Advance(3 * time.Second)
	if c.Phase() != PhasePlaying {
		t.Fatalf("phase = %s after countdown, want playing", c.Phase())
	}
}

func TestCountdownSequencing(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})

	if err := c.StartSession("# Hi"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if c.Phase() != PhaseCountdown || c.Countdown() != 3 {
		t.Fatalf("phase = %s(%d), want countdown(3)", c.Phase(), c.Countdown())
	}
	if c.Playing() {
		t.Fatal("expected not playing during countdown")
	}

	sim.Advance(time.Second)
	if c.Countdown() != 2 {
		t.Fatalf("countdown = %d after 1s, want 2", c.Countdown())
	}
	sim.Advance(time.Second)
	if c.Countdown() != 1 {
		t.Fatalf("countdown = %d after 2s, want 1", c.Countdown())
	}
	sim.Advance(time.Second)
	if c.Phase() != PhasePlaying || !c.Playing() {
		t.Fatalf("phase = %s playing=%v after 3s, want playing", c.Phase(), c.Playing())
	}
}

func TestStopDuringCountdownCancelsTimer(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{})

	if err := c.StartSession("# Hi"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	sim.Advance(time.Second)
	c.StopSession()
	if c.Phase() != PhaseStopped {
		t.Fatalf("phase = %s, want stopped", c.Phase())
	}
	if frames, timers := sim.Pending(); frames != 0 || timers != 0 {
		t.Fatalf("pending = (%d, %d), want (0, 0)", frames, timers)
	}

	log.reset()
	sim.Advance(2 * time.Second)
	if len(log.phases()) != 0 {
		t.Fatalf("unexpected phase changes after stop: %+v", log.phases())
	}
	if c.Phase() != PhaseStopped {
		t.Fatalf("phase = %s, want stopped", c.Phase())
	}
}

func TestStopWhilePlayingLeavesNothingPending(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)

	saved := 0
	geometry := c.NewDebouncer(300 * time.Millisecond)
	geometry.Trigger(func() { saved++ })
	sim.Advance(250 * time.Millisecond)

	c.StopSession()
	if frames, timers := sim.Pending(); frames != 0 || timers != 0 {
		t.Fatalf("pending = (%d, %d), want (0, 0)", frames, timers)
	}
	if saved != 1 {
		t.Fatalf("saved = %d, want the pending save flushed once", saved)
	}
	if c.Position() != 0 || c.Content() != "" {
		t.Fatalf("position=%v content=%q, want reset", c.Position(), c.Content())
	}
	if p, _ := c.PublishedProgress(); p != 0 {
		t.Fatalf("published progress = %v, want 0", p)
	}
	if c.Bounds().Measured() {
		t.Fatal("expected bounds cleared with the script")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	c, _, log := newTestController(t, 16*time.Millisecond, Options{})
	c.StopSession()
	if c.Phase() != PhaseIdle || len(log.events) != 0 {
		t.Fatalf("stop with nothing loaded should be a no-op, phase=%s events=%d", c.Phase(), len(log.events))
	}

	_ = c.StartSession(testScript)
	c.StopSession()
	log.reset()
	c.StopSession()
	if len(log.events) != 0 {
		t.Fatalf("second stop emitted %d events", len(log.events))
	}
}

func TestStartSessionRejectsEmptyScript(t *testing.T) {
	c, _, _ := newTestController(t, 16*time.Millisecond, Options{})
	if err := c.StartSession("  \n"); !errors.Is(err, ErrNoScript) {
		t.Fatalf("err = %v, want ErrNoScript", err)
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", c.Phase())
	}
}

func TestStartSessionResetsPositionAndProgress(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)
	sim.Advance(2 * time.Second)
	if c.Position() == 0 {
		t.Fatal("expected movement before restart")
	}

	if err := c.StartSession(testScript); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if c.Phase() != PhaseCountdown || c.Position() != 0 {
		t.Fatalf("phase=%s position=%v, want countdown at 0", c.Phase(), c.Position())
	}
	if p, _ := c.PublishedProgress(); p != 0 {
		t.Fatalf("progress = %v, want 0", p)
	}
	if !c.Bounds().Measured() {
		t.Fatal("same content should keep its measurements")
	}
	pos := c.Position()
	sim.Advance(2 * time.Second)
	if c.Position() != pos {
		t.Fatal("expected no integration during countdown")
	}
}

func TestToggleDuringCountdownCancels(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	_ = c.StartSession(testScript)
	sim.Advance(time.Second)

	c.Toggle()
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", c.Phase())
	}
	if c.Content() != testScript {
		t.Fatal("expected content kept after cancelling countdown")
	}
	if frames, timers := sim.Pending(); frames != 0 || timers != 0 {
		t.Fatalf("pending = (%d, %d), want (0, 0)", frames, timers)
	}

	c.Toggle()
	if c.Phase() != PhaseCountdown || c.Countdown() != 3 {
		t.Fatalf("phase = %s(%d), want a fresh countdown", c.Phase(), c.Countdown())
	}
}

func TestTogglePauseResume(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)

	for i := 0; i < 3; i++ {
		c.Toggle()
		if c.Phase() != PhasePaused || c.Playing() {
			t.Fatalf("round %d: phase = %s, want paused", i, c.Phase())
		}
		pos := c.Position()
		sim.Advance(time.Second)
		if c.Position() != pos {
			t.Fatalf("round %d: position moved while paused", i)
		}
		c.Toggle()
		if c.Phase() != PhasePlaying || !c.Playing() {
			t.Fatalf("round %d: phase = %s, want playing", i, c.Phase())
		}
		sim.Advance(time.Second)
	}
}

func TestStaleTimestampGuard(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{Speed: SpeedMedium})
	startPlaying(t, c, sim, 50000, 400)
	sim.Advance(time.Second)

	c.Toggle()
	sim.Advance(5 * time.Second)
	pos := c.Position()
	c.Toggle()
	sim.Advance(16 * time.Millisecond)

	if d := c.playback.LastDelta(); d <= 0 || d > 16*time.Millisecond {
		t.Fatalf("first delta after resume = %s, want about one frame", d)
	}
	if moved := c.Position() - pos; moved > 52*0.016+1e-9 {
		t.Fatalf("moved %.2fpx on the first frame after a 5s pause", moved)
	}
}

func TestHoverPauseResume(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)

	c.HoverPause()
	if c.Phase() != PhasePaused || !c.PausedByHover() {
		t.Fatalf("phase=%s byHover=%v, want hover pause", c.Phase(), c.PausedByHover())
	}
	c.HoverResume()
	if c.Phase() != PhasePlaying {
		t.Fatalf("phase = %s, want playing after hover resume", c.Phase())
	}
}

func TestHoverResumeDoesNotOverrideExplicitPause(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)

	c.Toggle()
	c.HoverPause()
	if c.PausedByHover() {
		t.Fatal("hover over an explicit pause must not claim the pause")
	}
	c.HoverResume()
	if c.Phase() != PhasePaused {
		t.Fatalf("phase = %s, want still paused", c.Phase())
	}
}

func TestExplicitToggleClearsHoverFlag(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)

	c.HoverPause()
	c.Toggle() // resume by hand while still hovering
	c.Toggle() // and pause by hand
	c.HoverResume()
	if c.Phase() != PhasePaused {
		t.Fatalf("phase = %s, want paused", c.Phase())
	}
}

func TestHoverIgnoredOutsidePlayback(t *testing.T) {
	c, _, _ := newTestController(t, 16*time.Millisecond, Options{})
	_ = c.StartSession(testScript)
	c.HoverPause()
	if c.Phase() != PhaseCountdown {
		t.Fatalf("phase = %s, want countdown untouched", c.Phase())
	}
}

func TestProgressThrottle(t *testing.T) {
	c, sim, log := newTestController(t, 5*time.Millisecond, Options{})
	startPlaying(t, c, sim, 50000, 400)
	sim.Advance(time.Second)

	log.reset()
	before := sim.FrameCount()
	sim.Advance(50 * time.Millisecond)
	if frames := sim.FrameCount() - before; frames != 10 {
		t.Fatalf("frames = %d, want 10", frames)
	}
	burst := log.publishes()
	if burst > 1 {
		t.Fatalf("publishes for 10 frames in 50ms = %d, want at most 1", burst)
	}

	c.SetPosition(c.Position() + 10)
	if got := log.publishes(); got != burst+1 {
		t.Fatalf("publishes after SetPosition = %d, want %d", got, burst+1)
	}
}

func TestProgressPublishedAtBoundedRate(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 50000, 400)

	log.reset()
	sim.Advance(2 * time.Second)
	if got := log.publishes(); got < 9 || got > 11 {
		t.Fatalf("publishes over 2s = %d, want about 10", got)
	}

	var last time.Time
	for _, ev := range log.events {
		pub, ok := ev.(ProgressPublished)
		if !ok {
			continue
		}
		if !last.IsZero() && pub.At.Sub(last) < DefaultPublishInterval {
			t.Fatalf("publishes %s apart, want >= %s", pub.At.Sub(last), DefaultPublishInterval)
		}
		if pub.Progress < 0 || pub.Progress > 1 {
			t.Fatalf("progress %v out of range", pub.Progress)
		}
		last = pub.At
	}
}

func TestEndOfContentKeepsSessionAndPublishesFinalProgress(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{Speed: SpeedFast})
	startPlaying(t, c, sim, 500, 400)

	sim.Advance(5 * time.Second)
	if c.Position() != 100 {
		t.Fatalf("position = %v, want 100", c.Position())
	}
	if c.Phase() != PhasePlaying {
		t.Fatalf("phase = %s, reaching the end must not change phase", c.Phase())
	}
	if p, ok := c.PublishedProgress(); !ok || p != 1 {
		t.Fatalf("final published progress = %v, %v; want 1", p, ok)
	}
	if frames, timers := sim.Pending(); frames != 0 || timers != 0 {
		t.Fatalf("pending = (%d, %d), want an idle loop at the end", frames, timers)
	}

	log.reset()
	sim.Advance(5 * time.Second)
	if len(log.events) != 0 {
		t.Fatalf("events after end: %d", len(log.events))
	}
	if c.Position() != 100 {
		t.Fatal("position wrapped or moved after the end")
	}
}

func TestClampingHoldsAcrossOperations(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{Speed: SpeedFast})
	startPlaying(t, c, sim, 1500, 400)

	check := func(step string) {
		t.Helper()
		limit := c.Bounds().MaxScroll()
		if pos := c.Position(); pos < 0 || pos > limit {
			t.Fatalf("%s: position %v outside [0, %v]", step, pos, limit)
		}
	}
	ops := []struct {
		name string
		do   func()
	}{
		{"play", func() { sim.Advance(3 * time.Second) }},
		{"rewind", c.Rewind},
		{"rewind-big", func() { c.RewindByFraction(10) }},
		{"step-up", c.StepUp},
		{"seek-past-end", func() { c.SetPosition(1e9) }},
		{"step-down", c.StepDown},
		{"seek-negative", func() { c.SetPosition(-50) }},
		{"shrink", func() { c.SetMetrics(450, 400) }},
		{"play-more", func() { sim.Advance(10 * time.Second) }},
		{"grow", func() { c.SetMetrics(3000, 400) }},
		{"resize-viewport", func() { c.SetMetrics(3000, 2900) }},
		{"step-down-end", c.StepDown},
		{"play-end", func() { sim.Advance(30 * time.Second) }},
	}
	for _, op := range ops {
		op.do()
		check(op.name)
	}

	for _, ev := range log.events {
		if pc, ok := ev.(PositionChanged); ok && pc.Position < 0 {
			t.Fatalf("negative position published: %v", pc.Position)
		}
	}
}

func TestRewindByFraction(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	_ = c.StartSession(testScript)
	c.SetMetrics(3000, 300)
	_ = sim

	c.SetPosition(500)
	c.Rewind()
	if got := c.Position(); math.Abs(got-400) > 1e-9 {
		t.Fatalf("position = %v, want 400", got)
	}
	c.RewindByFraction(0.5)
	if got := c.Position(); math.Abs(got-250) > 1e-9 {
		t.Fatalf("position = %v, want 250", got)
	}
	c.SetPosition(50)
	c.Rewind()
	if c.Position() != 0 {
		t.Fatalf("position = %v, want clamped to 0", c.Position())
	}
}

func TestStepUsesConfiguredDistance(t *testing.T) {
	c, _, log := newTestController(t, 16*time.Millisecond, Options{StepPx: 40})
	_ = c.StartSession(testScript)
	c.SetMetrics(3000, 300)

	c.StepDown()
	c.StepDown()
	c.StepUp()
	if c.Position() != 40 {
		t.Fatalf("position = %v, want 40", c.Position())
	}

	manual := 0
	for _, ev := range log.events {
		if pc, ok := ev.(PositionChanged); ok && pc.Manual {
			manual++
		}
	}
	if manual != 3 {
		t.Fatalf("manual position events = %d, want 3", manual)
	}
}

func TestManualMovesDoNotChangePlayState(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)

	c.Toggle()
	c.StepDown()
	c.SetPosition(1000)
	c.Rewind()
	if c.Phase() != PhasePaused {
		t.Fatalf("phase = %s, want paused", c.Phase())
	}
	if frames, _ := sim.Pending(); frames != 0 {
		t.Fatal("manual move while paused must not start the frame loop")
	}
}

func TestManualMovesBeforeMeasurementAreNoops(t *testing.T) {
	c, _, log := newTestController(t, 16*time.Millisecond, Options{})
	_ = c.StartSession(testScript)
	log.reset()

	c.StepDown()
	c.StepUp()
	c.Rewind()
	c.SetPosition(300)
	if c.Position() != 0 {
		t.Fatalf("position = %v, want 0", c.Position())
	}
	if len(log.events) != 0 {
		t.Fatalf("events = %d, want none", len(log.events))
	}
}

func TestInvalidNumbersRejected(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)
	c.Toggle()
	c.SetPosition(200)

	c.SetPosition(math.NaN())
	c.SetPosition(math.Inf(1))
	c.StepBy(math.NaN())
	c.RewindByFraction(math.Inf(1))
	c.RewindByFraction(-1)
	c.SetMetrics(math.NaN(), 400)
	c.SetMetrics(-10, 400)
	c.SetMetrics(5000, math.Inf(1))
	c.SetSpeed(SpeedPreset(42))

	if c.Position() != 200 {
		t.Fatalf("position = %v, want 200", c.Position())
	}
	if c.Bounds() != (Bounds{ContentHeight: 5000, ViewportHeight: 400}) {
		t.Fatalf("bounds = %+v, want unchanged", c.Bounds())
	}
	if c.Speed() != DefaultSpeed {
		t.Fatalf("speed = %s, want %s", c.Speed(), DefaultSpeed)
	}
}

func TestSetMetricsReclampsPosition(t *testing.T) {
	c, _, log := newTestController(t, 16*time.Millisecond, Options{})
	_ = c.StartSession(testScript)
	c.SetMetrics(3000, 400)
	c.SetPosition(2000)
	log.reset()

	c.SetMetrics(1000, 400)
	if c.Position() != 600 {
		t.Fatalf("position = %v, want 600", c.Position())
	}
	if log.publishes() != 1 {
		t.Fatalf("publishes = %d, want 1", log.publishes())
	}
}

func TestLoadScriptInvalidatesBounds(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)
	sim.Advance(time.Second)

	c.LoadScript("# Another\n\nshort")
	if c.Bounds().Measured() {
		t.Fatal("expected bounds invalidated by new content")
	}
	if c.Phase() != PhasePlaying {
		t.Fatalf("phase = %s, loading content should not end the session", c.Phase())
	}
	pos := c.Position()
	sim.Advance(time.Second)
	if c.Position() != pos {
		t.Fatal("expected no integration against stale bounds")
	}

	c.SetMetrics(420, 400)
	if c.Position() > 20 {
		t.Fatalf("position = %v, want clamped to the new maxScroll", c.Position())
	}
}

func TestLoadScriptAfterStopReturnsToIdle(t *testing.T) {
	c, _, _ := newTestController(t, 16*time.Millisecond, Options{})
	_ = c.StartSession(testScript)
	c.StopSession()

	c.LoadScript(testScript)
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", c.Phase())
	}
	if err := c.Handle(StartCountdown{}); err != nil {
		t.Fatalf("start countdown: %v", err)
	}
	if c.Phase() != PhaseCountdown {
		t.Fatalf("phase = %s, want countdown", c.Phase())
	}
}

func TestSpeedPresets(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{Speed: SpeedSlow})
	if c.SpeedPxPerSec() != 30 {
		t.Fatalf("slow = %v px/s, want 30", c.SpeedPxPerSec())
	}
	if got := c.CycleSpeed(); got != SpeedMedium {
		t.Fatalf("cycle from slow = %s, want medium", got)
	}
	if got := c.CycleSpeed(); got != SpeedFast {
		t.Fatalf("cycle from medium = %s, want fast", got)
	}
	if got := c.CycleSpeed(); got != SpeedSlow {
		t.Fatalf("cycle from fast = %s, want slow", got)
	}

	changes := 0
	for _, ev := range log.events {
		if _, ok := ev.(SpeedChanged); ok {
			changes++
		}
	}
	if changes != 3 {
		t.Fatalf("speed events = %d, want 3", changes)
	}

	c.SetSpeed(SpeedFast)
	startPlaying(t, c, sim, 50000, 400)
	pos := c.Position()
	sim.Advance(time.Second)
	if moved := c.Position() - pos; math.Abs(moved-82) > 1 {
		t.Fatalf("moved %.2fpx in 1s at fast, want about 82", moved)
	}
}

func TestCustomSpeedsValidated(t *testing.T) {
	c, _, _ := newTestController(t, 16*time.Millisecond, Options{
		Speed:  SpeedFast,
		Speeds: map[SpeedPreset]float64{SpeedFast: 120, SpeedSlow: -3, SpeedMedium: math.NaN()},
	})
	if c.SpeedPxPerSec() != 120 {
		t.Fatalf("fast = %v, want 120", c.SpeedPxPerSec())
	}
	c.SetSpeed(SpeedSlow)
	if c.SpeedPxPerSec() != 30 {
		t.Fatalf("slow = %v, want default 30 for an invalid override", c.SpeedPxPerSec())
	}
}

func TestHandleCommands(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})

	if err := c.Handle(StartCountdown{}); !errors.Is(err, ErrNoScript) {
		t.Fatalf("start without script: err = %v, want ErrNoScript", err)
	}

	names := []string{"load-script", "start-countdown"}
	for _, name := range names {
		cmd, err := ParseCommand(name, testScript)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", name, err)
		}
		if cmd.Name() != name {
			t.Fatalf("Name() = %q, want %q", cmd.Name(), name)
		}
		if err := c.Handle(cmd); err != nil {
			t.Fatalf("Handle(%s): %v", name, err)
		}
	}
	c.SetMetrics(5000, 300)
	sim.Advance(3 * time.Second)
	if c.Phase() != PhasePlaying {
		t.Fatalf("phase = %s, want playing", c.Phase())
	}

	_ = c.Handle(TogglePlay{})
	if c.Phase() != PhasePaused {
		t.Fatalf("toggle-play: phase = %s, want paused", c.Phase())
	}
	_ = c.Handle(ScrollDown{})
	_ = c.Handle(ScrollDown{})
	_ = c.Handle(ScrollUp{})
	if c.Position() != DefaultStepPx {
		t.Fatalf("position = %v, want %v", c.Position(), DefaultStepPx)
	}
	_ = c.Handle(Rewind{})
	if c.Position() != 0 {
		t.Fatalf("rewind: position = %v, want 0", c.Position())
	}
	_ = c.Handle(CycleSpeed{})
	if c.Speed() != SpeedFast {
		t.Fatalf("cycle-speed: speed = %s, want fast", c.Speed())
	}

	if _, err := ParseCommand("explode", ""); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("ParseCommand unknown: err = %v", err)
	}
}

type bogusCommand struct{}

func (bogusCommand) Name() string { return "bogus" }

func TestHandleUnknownCommand(t *testing.T) {
	c, _, _ := newTestController(t, 16*time.Millisecond, Options{})
	if err := c.Handle(bogusCommand{}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	c, _, _ := newTestController(t, 16*time.Millisecond, Options{})
	count := 0
	unsub := c.Subscribe(func(Event) { count++ })
	c.CycleSpeed()
	unsub()
	unsub()
	c.CycleSpeed()
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestPhaseTransitions(t *testing.T) {
	allowed := []struct{ from, to Phase }{
		{PhaseIdle, PhaseCountdown},
		{PhaseCountdown, PhasePlaying},
		{PhasePlaying, PhasePaused},
		{PhasePaused, PhasePlaying},
		{PhasePlaying, PhaseStopped},
		{PhaseStopped, PhaseCountdown},
	}
	for _, tt := range allowed {
		if !canTransition(tt.from, tt.to) {
			t.Errorf("%s -> %s should be allowed", tt.from, tt.to)
		}
	}
	denied := []struct{ from, to Phase }{
		{PhaseIdle, PhasePlaying},
		{PhaseStopped, PhasePlaying},
		{PhasePaused, PhaseIdle},
		{PhaseIdle, PhasePaused},
	}
	for _, tt := range denied {
		if canTransition(tt.from, tt.to) {
			t.Errorf("%s -> %s should be denied", tt.from, tt.to)
		}
	}

	c, _, _ := newTestController(t, 16*time.Millisecond, Options{})
	if err := c.setPhase(PhasePlaying); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("err = %v, want ErrInvalidPhase", err)
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", c.Phase())
	}
}

func TestCloseCancelsEverything(t *testing.T) {
	c, sim, _ := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 5000, 400)
	flushed := false
	c.NewDebouncer(time.Second).Trigger(func() { flushed = true })

	c.Close()
	if frames, timers := sim.Pending(); frames != 0 || timers != 0 {
		t.Fatalf("pending = (%d, %d), want (0, 0)", frames, timers)
	}
	if !flushed {
		t.Fatal("expected Close to flush debouncers")
	}
}

func TestScriptThatFitsClearsPublishedProgress(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 2000, 500)
	c.SetPosition(750)
	if p, ok := c.PublishedProgress(); !ok || p != 0.5 {
		t.Fatalf("published = %v, %v; want 0.5", p, ok)
	}

	log.reset()
	c.LoadScript("# short")
	c.SetMetrics(300, 500)

	if p, ok := c.PublishedProgress(); ok || p != 0 {
		t.Fatalf("published = %v, %v; want absent once the script fits", p, ok)
	}
	var last ProgressPublished
	for _, ev := range log.events {
		if pp, ok := ev.(ProgressPublished); ok {
			last = pp
		}
	}
	if !last.Absent || last.Progress != 0 {
		t.Fatalf("last publish = %+v, want an absent publication", last)
	}

	log.reset()
	c.SetMetrics(300, 600)
	if n := log.publishes(); n != 0 {
		t.Fatalf("absence republished %d times", n)
	}
}

func TestStopRightAfterEndPublishesFinalProgress(t *testing.T) {
	c, sim, log := newTestController(t, 16*time.Millisecond, Options{})
	startPlaying(t, c, sim, 500, 400)

	for i := 0; c.Position() < 100; i++ {
		if i > 1000 {
			t.Fatal("never reached the end")
		}
		sim.Step(16 * time.Millisecond)
	}
	c.StopSession()

	var maxSeen float64
	stopped := false
	for _, ev := range log.events {
		switch ev := ev.(type) {
		case ProgressPublished:
			maxSeen = max(maxSeen, ev.Progress)
		case PhaseChanged:
			if ev.To == PhaseStopped {
				stopped = true
				if maxSeen != 1 {
					t.Fatalf("stopped with max published progress %v, want 1", maxSeen)
				}
			}
		}
	}
	if !stopped {
		t.Fatal("no stop event")
	}
	if frames, timers := sim.Pending(); frames != 0 || timers != 0 {
		t.Fatalf("pending = (%d, %d) after stop", frames, timers)
	}
}
