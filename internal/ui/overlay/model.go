// Package overlay is the full-screen teleprompter view. It hosts a
// prompter.Controller, measures rendered script rows, and turns keys and
// mouse input into controller commands.
package overlay

import (
	"errors"
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	zone "github.com/lrstanley/bubblezone"

	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/keymap"
	"github.com/andyrewlee/tprompt/internal/logging"
	"github.com/andyrewlee/tprompt/internal/prompter"
	"github.com/andyrewlee/tprompt/internal/render"
	"github.com/andyrewlee/tprompt/internal/script"
	"github.com/andyrewlee/tprompt/internal/ui/common"
)

const (
	// chromeRows are the progress bar and footer below the script.
	chromeRows = 2

	readingLineFraction = 0.3

	speedToastDuration = 1500 * time.Millisecond
	guideDuration      = 6 * time.Second
	geometryDebounce   = 300 * time.Millisecond
)

// LoadScriptMsg replaces the script. With Start set a countdown begins.
type LoadScriptMsg struct {
	Content string
	Start   bool
}

// ReloadMsg carries new content for the script being read. Phase and place
// are kept; position is clamped to the new length.
type ReloadMsg struct {
	Content string
}

// CommandMsg delivers a controller command from outside the key handler.
type CommandMsg struct {
	Command prompter.Command
}

type guideDismissedMsg struct {
	id int
}

type clipboardMsg struct {
	content string
	err     error
}

// Options configures the overlay.
type Options struct {
	Preferences config.Preferences
	KeyMap      config.KeyMapConfig

	// Content is loaded before the first frame. AutoStart begins its countdown.
	Content   string
	AutoStart bool

	// Clock and Scheduler default to wall time on the bubbletea loop.
	Clock         prompter.Clock
	Scheduler     prompter.Scheduler
	FrameInterval time.Duration

	// OnPreferences and OnGeometry persist user adjustments.
	OnPreferences func(config.Preferences)
	OnGeometry    func(config.Geometry)

	// Observers receive every controller event after the overlay.
	Observers []func(prompter.Event)

	ReadClipboard func() (string, error)
}

// Model is the bubbletea model for the overlay.
type Model struct {
	ctrl   *prompter.Controller
	sched  *teaScheduler
	keymap keymap.KeyMap

	styles   common.Styles
	mdStyles render.Styles
	toast    *common.ToastModel
	zone     *zone.Manager

	prefs    config.Preferences
	geometry *prompter.Debouncer

	onPrefs       func(config.Preferences)
	onGeometry    func(config.Geometry)
	readClipboard func() (string, error)

	width  int
	height int

	body        string
	title       string
	doc         render.Document
	layoutDirty bool

	progress    float64
	hasProgress bool

	hovering  bool
	showGuide bool
	guideSeq  int
	escDialog bool
	quitting  bool
}

// New builds an overlay around a fresh controller.
func New(opts Options) *Model {
	prefs := opts.Preferences.Normalize()

	clock := opts.Clock
	if clock == nil {
		clock = prompter.SystemClock{}
	}
	var sched prompter.Scheduler = opts.Scheduler
	var teaSched *teaScheduler
	if sched == nil {
		teaSched = newTeaScheduler(opts.FrameInterval)
		sched = teaSched
	}

	speed, err := prompter.ParseSpeedPreset(prefs.Speed)
	if err != nil {
		speed = prompter.DefaultSpeed
	}

	m := &Model{
		sched:         teaSched,
		keymap:        keymap.New(opts.KeyMap),
		styles:        common.DefaultStyles(),
		mdStyles:      render.DefaultStyles(),
		toast:         common.NewToastModel(),
		zone:          zone.New(),
		prefs:         prefs,
		onPrefs:       opts.OnPreferences,
		onGeometry:    opts.OnGeometry,
		readClipboard: opts.ReadClipboard,
		layoutDirty:   true,
	}
	if m.readClipboard == nil {
		m.readClipboard = clipboard.ReadAll
	}

	m.ctrl = prompter.NewController(prompter.Options{
		Clock:          clock,
		Scheduler:      sched,
		Speed:          speed,
		RewindFraction: prefs.RewindFraction,
		StepPx:         prefs.StepPx,
	})
	m.geometry = m.ctrl.NewDebouncer(geometryDebounce)
	m.ctrl.Subscribe(m.onEvent)
	for _, observe := range opts.Observers {
		m.ctrl.Subscribe(observe)
	}

	if opts.Content != "" {
		m.loadScript(opts.Content, opts.AutoStart)
	}
	return m
}

// Controller exposes the engine for wiring and tests.
func (m *Model) Controller() *prompter.Controller { return m.ctrl }

// Preferences returns the current reading settings.
func (m *Model) Preferences() config.Preferences { return m.prefs }

// Close cancels outstanding callbacks, flushing pending saves.
func (m *Model) Close() {
	m.ctrl.Close()
	m.zone.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.sched == nil {
		return nil
	}
	return m.sched.drain()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.sched != nil && m.sched.handle(msg) {
		return m, m.finish(cmds)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg))
	case tea.MouseMotionMsg:
		m.handleMotion(msg)
	case tea.MouseClickMsg:
		cmds = append(cmds, m.handleClick(msg))
	case tea.MouseWheelMsg:
		m.handleWheel(msg)
	case tea.BlurMsg:
		m.leaveContent()
	case tea.PasteMsg:
		m.loadScript(msg.Content, false)
		cmds = append(cmds, m.toast.ShowInfo("Script pasted"))
	case clipboardMsg:
		cmds = append(cmds, m.handleClipboard(msg))
	case LoadScriptMsg:
		m.loadScript(msg.Content, msg.Start)
	case ReloadMsg:
		m.reload(msg.Content)
	case CommandMsg:
		cmds = append(cmds, m.runCommand(msg.Command))
	case common.ToastDismissed:
		m.toast.Update(msg)
	case guideDismissedMsg:
		if msg.id == m.guideSeq {
			m.showGuide = false
		}
	}
	return m, m.finish(cmds)
}

// finish lays out pending changes and collects scheduler work.
func (m *Model) finish(cmds []tea.Cmd) tea.Cmd {
	m.sync()
	if m.sched != nil {
		cmds = append(cmds, m.sched.drain())
	}
	if m.quitting {
		cmds = append(cmds, tea.Quit)
	}
	return tea.Batch(cmds...)
}

func (m *Model) onEvent(ev prompter.Event) {
	switch ev := ev.(type) {
	case prompter.ContentChanged:
		m.body = script.Body(ev.Content)
		m.title = ""
		if ev.Content != "" {
			m.title = script.Describe(ev.Content).Title
		}
		m.layoutDirty = true
	case prompter.ProgressPublished:
		m.progress = ev.Progress
		m.hasProgress = !ev.Absent
	case prompter.PhaseChanged:
		if ev.To == prompter.PhaseStopped {
			m.hasProgress = false
			m.progress = 0
		}
	}
}

func (m *Model) loadScript(content string, start bool) {
	if start {
		if err := m.ctrl.StartSession(content); err != nil {
			logging.Warn("overlay: start session: %v", err)
		}
	} else {
		m.ctrl.LoadScript(content)
	}
	m.applyFrontMatterSpeed(content)
	m.sync()
}

func (m *Model) reload(content string) {
	if content == m.ctrl.Content() {
		return
	}
	if m.ctrl.Content() == "" {
		// Stopped sessions stay stopped until the user loads again.
		return
	}
	m.ctrl.LoadScript(content)
	m.sync()
}

func (m *Model) applyFrontMatterSpeed(content string) {
	fm, _, err := script.Split(content)
	if err != nil || fm.Speed == "" {
		return
	}
	preset, err := prompter.ParseSpeedPreset(fm.Speed)
	if err != nil {
		logging.Warn("overlay: front matter speed %q: %v", fm.Speed, err)
		return
	}
	m.ctrl.SetSpeed(preset)
}

func (m *Model) resize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.layoutDirty = true
	if m.onGeometry != nil {
		geometry := config.Geometry{Width: width, Height: height}
		m.geometry.Trigger(func() { m.onGeometry(geometry) })
	}
}

// contentRows is the number of rows showing script text.
func (m *Model) contentRows() int {
	return max(1, m.height-chromeRows)
}

// columnWidth is the width the script is wrapped to.
func (m *Model) columnWidth() int {
	width := m.prefs.TextWidth
	if m.width > 0 {
		width = min(width, m.width-2)
	}
	return max(width, 8)
}

// rowHeight converts rows to the controller's pixel space.
func (m *Model) rowHeight() float64 { return float64(m.prefs.FontSize) }

// sync re-renders the script and reports new measurements. Until the first
// window size arrives the container stays unmeasured.
func (m *Model) sync() {
	if !m.layoutDirty {
		return
	}
	m.layoutDirty = false
	m.doc = render.Render(m.body, m.columnWidth(), m.mdStyles)
	if m.width <= 0 || m.height <= 0 || m.ctrl.Content() == "" {
		return
	}
	m.ctrl.SetMetrics(
		float64(m.doc.Height())*m.rowHeight(),
		float64(m.contentRows())*m.rowHeight(),
	)
}

// firstRow is the document row at the top of the viewport.
func (m *Model) firstRow() int {
	return int(math.Floor(m.ctrl.Position() / m.rowHeight()))
}

// relayout applies a layout change while keeping the reader's place.
func (m *Model) relayout() {
	fraction, ok := m.ctrl.Progress()
	m.layoutDirty = true
	m.sync()
	if !ok {
		return
	}
	b := m.ctrl.Bounds()
	if b.Measured() {
		m.ctrl.SetPosition(fraction * b.MaxScroll())
	}
}

func (m *Model) savePreferences() {
	if m.onPrefs != nil {
		m.onPrefs(m.prefs)
	}
}

func (m *Model) runCommand(cmd prompter.Command) tea.Cmd {
	if load, ok := cmd.(prompter.LoadScript); ok {
		m.loadScript(load.Content, false)
		return nil
	}
	err := m.ctrl.Handle(cmd)
	switch {
	case errors.Is(err, prompter.ErrNoScript):
		return m.toast.ShowWarning("No script loaded")
	case err != nil:
		logging.Warn("overlay: %s: %v", cmd.Name(), err)
		return nil
	}
	if _, ok := cmd.(prompter.CycleSpeed); ok {
		return m.speedChanged()
	}
	return nil
}

func (m *Model) speedChanged() tea.Cmd {
	m.prefs.Speed = m.ctrl.Speed().String()
	m.savePreferences()
	return m.toast.Show("Speed: "+m.ctrl.Speed().Label(), common.LevelInfo, speedToastDuration)
}

func (m *Model) handleClipboard(msg clipboardMsg) tea.Cmd {
	if msg.err != nil {
		logging.Warn("overlay: read clipboard: %v", msg.err)
		return m.toast.ShowError("Clipboard unavailable")
	}
	if strings.TrimSpace(script.Body(msg.content)) == "" {
		return m.toast.ShowWarning("Clipboard is empty")
	}
	m.loadScript(msg.content, false)
	return m.toast.ShowSuccess("Loaded " + script.Describe(msg.content).Title)
}
