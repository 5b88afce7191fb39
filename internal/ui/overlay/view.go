package overlay

import (
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/tprompt/internal/keymap"
	"github.com/andyrewlee/tprompt/internal/prompter"
)

const (
	placeholderText = "No script loaded"
	placeholderHint = "paste with p, or start tprompt with a file"
	readingMarker   = "▸"
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeAllMotion
	view.ReportFocus = true
	view.WindowTitle = m.windowTitle()

	view.SetContent(m.zone.Scan(m.render()))
	return view
}

// render draws the whole screen as text.
func (m *Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	rows := m.contentRows()
	var body []string
	switch {
	case m.escDialog:
		body = m.placeLines(m.renderEscDialog(), rows)
	case m.showGuide:
		body = m.placeLines(m.renderGuide(), rows)
	case m.ctrl.Phase() == prompter.PhaseCountdown:
		body = m.placeLines(m.styles.Countdown.Render(fmt.Sprintf("%d", m.ctrl.Countdown())), rows)
	case m.ctrl.Content() == "":
		body = m.placeLines(m.renderPlaceholder(), rows)
	default:
		body = m.renderScript(rows)
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, body...)
	lines = append(lines, m.renderProgressBar(), m.renderFooter())
	return strings.Join(lines, "\n")
}

func (m *Model) windowTitle() string {
	if m.title == "" {
		return "tprompt"
	}
	return "tprompt: " + m.title
}

// renderScript draws the visible window of the document. The row at the
// reading line carries a marker in the left gutter.
func (m *Model) renderScript(rows int) []string {
	window := m.doc.Window(m.firstRow(), rows)
	column := m.doc.Width
	pad := max(0, (m.width-column)/2)
	readingRow := int(math.Floor(float64(rows) * readingLineFraction))

	out := make([]string, rows)
	for i := range out {
		gutter := strings.Repeat(" ", pad)
		if i == readingRow && pad >= 2 {
			gutter = strings.Repeat(" ", pad-2) + m.styles.ReadingLine.Render(readingMarker) + " "
		}
		if i < len(window) {
			out[i] = gutter + window[i]
		} else if i == readingRow {
			out[i] = gutter
		}
	}
	return out
}

func (m *Model) renderPlaceholder() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Placeholder.Render(placeholderText),
		m.styles.Muted.Render(placeholderHint),
	)
}

func (m *Model) renderEscDialog() string {
	title := m.styles.DialogTitle.Render("Session stopped")
	message := m.styles.DialogMessage.Render("Close the teleprompter?")
	options := m.styles.DialogOption.Render("[y] close") + "   " + m.styles.DialogOption.Render("[n] keep open")
	return m.styles.DialogBox.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", message, "", options))
}

func (m *Model) renderGuide() string {
	var lines []string
	group := ""
	for _, info := range keymap.ActionInfos() {
		if info.Group != group {
			if group != "" {
				lines = append(lines, "")
			}
			group = info.Group
			lines = append(lines, m.styles.GuideGroup.Render(group))
		}
		keys := keymap.BindingForAction(m.keymap, info.Action).Help().Key
		lines = append(lines, fmt.Sprintf("  %s  %s",
			m.styles.HintKey.Render(fmt.Sprintf("%-10s", keys)),
			m.styles.HintDesc.Render(info.Desc)))
	}
	lines = append(lines, "", m.styles.Muted.Render("any key to close"))
	return m.styles.DialogBox.Render(strings.Join(lines, "\n"))
}

// placeLines centers block in the content area and splits it into rows.
func (m *Model) placeLines(block string, rows int) []string {
	placed := lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, block)
	lines := strings.Split(placed, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines
}

// renderProgressBar is blank until progress has been published and while
// it is zero.
func (m *Model) renderProgressBar() string {
	if !m.hasProgress || m.progress <= 0 {
		return ""
	}
	filled := int(math.Round(m.progress * float64(m.width)))
	filled = min(max(filled, 0), m.width)
	return m.styles.ProgressFilled.Render(strings.Repeat("━", filled)) +
		m.styles.ProgressEmpty.Render(strings.Repeat("─", m.width-filled))
}

func (m *Model) renderFooter() string {
	parts := []string{
		m.zone.Mark(zonePlayBadge, m.phaseBadge()),
		m.zone.Mark(zoneSpeedBadge, m.styles.SpeedBadge.Render(m.ctrl.Speed().Label())),
	}
	if m.title != "" {
		parts = append(parts, m.styles.Muted.Render(m.title))
	}

	switch {
	case m.toast.Visible():
		parts = append(parts, m.toast.View())
	case m.prefs.ShowHints:
		parts = append(parts, m.renderHints())
	}

	line := strings.Join(parts, " ")
	if ansi.StringWidth(line) > m.width {
		line = ansi.Truncate(line, m.width, "…")
	}
	return m.styles.Footer.Width(m.width).Render(line)
}

func (m *Model) phaseBadge() string {
	switch m.ctrl.Phase() {
	case prompter.PhasePlaying:
		return m.styles.PlayBadge.Render("PLAY")
	case prompter.PhasePaused:
		if m.ctrl.PausedByHover() {
			return m.styles.PauseBadge.Render("HOLD")
		}
		return m.styles.PauseBadge.Render("PAUSE")
	case prompter.PhaseCountdown:
		return m.styles.PauseBadge.Render(fmt.Sprintf("IN %d", m.ctrl.Countdown()))
	case prompter.PhaseStopped:
		return m.styles.IdleBadge.Render("STOP")
	default:
		return m.styles.IdleBadge.Render("READY")
	}
}

func (m *Model) renderHints() string {
	sep := m.styles.HintSeparator.Render(" · ")
	hint := func(k, desc string) string {
		return m.styles.HintKey.Render(k) + " " + m.styles.HintDesc.Render(desc)
	}
	hints := []string{
		hint(keymap.BindingHint(m.keymap.Toggle), "play"),
		hint(keymap.BindingHint(m.keymap.CycleSpeed), "speed"),
		hint(keymap.BindingHint(m.keymap.Rewind), "rewind"),
		hint(keymap.PairHint(m.keymap.ScrollUp, m.keymap.ScrollDown), "step"),
		hint(keymap.BindingHint(m.keymap.Guide), "keys"),
	}
	return strings.Join(hints, sep)
}
