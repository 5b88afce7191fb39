package overlay

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	zone "github.com/lrstanley/bubblezone"

	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/keymap"
	"github.com/andyrewlee/tprompt/internal/prompter"
)

const (
	zonePlayBadge  = "tprompt-play"
	zoneSpeedBadge = "tprompt-speed"
)

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	keyStr := msg.String()

	if m.escDialog {
		switch strings.ToLower(keyStr) {
		case "y", "enter":
			m.escDialog = false
			m.quitting = true
		case "n", "esc":
			m.escDialog = false
		}
		return nil
	}

	action, ok := keymap.Match(m.keymap, keyStr)
	if m.showGuide {
		// Any key closes the guide; only quit also acts.
		m.showGuide = false
		if ok && action == keymap.ActionQuit {
			m.quitting = true
		}
		return nil
	}
	if !ok {
		return nil
	}

	switch action {
	case keymap.ActionStart:
		return m.runCommand(prompter.StartCountdown{})
	case keymap.ActionToggle:
		if m.ctrl.Content() == "" {
			return m.toast.ShowWarning("No script loaded")
		}
		return m.runCommand(prompter.TogglePlay{})
	case keymap.ActionCycleSpeed:
		return m.runCommand(prompter.CycleSpeed{})
	case keymap.ActionRewind:
		return m.runCommand(prompter.Rewind{})
	case keymap.ActionScrollUp:
		return m.runCommand(prompter.ScrollUp{})
	case keymap.ActionScrollDown:
		return m.runCommand(prompter.ScrollDown{})
	case keymap.ActionStop:
		return m.stop()
	case keymap.ActionFontSmaller:
		m.setFontSize(m.prefs.FontSize - config.FontSizeStep)
	case keymap.ActionFontLarger:
		m.setFontSize(m.prefs.FontSize + config.FontSizeStep)
	case keymap.ActionNarrower:
		m.setTextWidth(m.prefs.TextWidth - config.TextWidthStep)
	case keymap.ActionWider:
		m.setTextWidth(m.prefs.TextWidth + config.TextWidthStep)
	case keymap.ActionPaste:
		read := m.readClipboard
		return func() tea.Msg {
			content, err := read()
			return clipboardMsg{content: content, err: err}
		}
	case keymap.ActionGuide:
		m.showGuide = true
		m.guideSeq++
		id := m.guideSeq
		return tea.Tick(guideDuration, func(time.Time) tea.Msg {
			return guideDismissedMsg{id: id}
		})
	case keymap.ActionQuit:
		m.quitting = true
	}
	return nil
}

// stop ends the session, then closes, asks, or stays open per esc_action.
func (m *Model) stop() tea.Cmd {
	m.ctrl.StopSession()
	m.hovering = false
	switch m.prefs.EscAction {
	case config.EscClose:
		m.quitting = true
	case config.EscKeepOpen:
	default:
		m.escDialog = true
	}
	return nil
}

func (m *Model) setFontSize(size int) {
	size = config.ClampFontSize(size)
	if size == m.prefs.FontSize {
		return
	}
	m.prefs.FontSize = size
	m.relayout()
	m.savePreferences()
}

func (m *Model) setTextWidth(width int) {
	width = config.ClampTextWidth(width)
	if width == m.prefs.TextWidth {
		return
	}
	m.prefs.TextWidth = width
	m.relayout()
	m.savePreferences()
}

// inContent reports whether a cell lies over the script text.
func (m *Model) inContent(y int) bool {
	return y >= 0 && y < m.contentRows()
}

func (m *Model) handleMotion(msg tea.MouseMotionMsg) {
	if m.escDialog || m.showGuide {
		return
	}
	if m.inContent(msg.Y) {
		if !m.hovering {
			m.hovering = true
			m.ctrl.HoverPause()
		}
		return
	}
	m.leaveContent()
}

func (m *Model) leaveContent() {
	if !m.hovering {
		return
	}
	m.hovering = false
	m.ctrl.HoverResume()
}

func (m *Model) handleClick(msg tea.MouseClickMsg) tea.Cmd {
	if msg.Button != tea.MouseLeft || m.escDialog {
		return nil
	}
	if m.showGuide {
		m.showGuide = false
		return nil
	}
	switch {
	case inZone(m.zone.Get(zoneSpeedBadge), msg.X, msg.Y):
		return m.runCommand(prompter.CycleSpeed{})
	case inZone(m.zone.Get(zonePlayBadge), msg.X, msg.Y):
		return m.runCommand(prompter.TogglePlay{})
	case m.inContent(msg.Y) && m.ctrl.Content() != "":
		return m.runCommand(prompter.TogglePlay{})
	}
	return nil
}

func (m *Model) handleWheel(msg tea.MouseWheelMsg) {
	switch msg.Button {
	case tea.MouseWheelUp:
		m.ctrl.StepUp()
	case tea.MouseWheelDown:
		m.ctrl.StepDown()
	}
}

// inZone checks a cell against a zone's box. Zones are recorded by the
// previous View, so a missing zone simply misses.
func inZone(z *zone.ZoneInfo, x, y int) bool {
	if z.IsZero() {
		return false
	}
	return x >= z.StartX && x <= z.EndX && y >= z.StartY && y <= z.EndY
}
