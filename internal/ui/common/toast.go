package common

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ToastLevel picks the icon, colour and default lifetime of a toast.
type ToastLevel int

const (
	LevelInfo ToastLevel = iota
	LevelSuccess
	LevelWarning
	LevelError
)

var toastLifetimes = [...]time.Duration{
	LevelInfo:    3 * time.Second,
	LevelSuccess: 3 * time.Second,
	LevelWarning: 4 * time.Second,
	LevelError:   5 * time.Second,
}

var toastIcons = [...]string{
	LevelInfo:    "i",
	LevelSuccess: "✓",
	LevelWarning: "!",
	LevelError:   "✗",
}

// ToastDismissed expires the toast with the matching ID. Newer toasts ignore it.
type ToastDismissed struct {
	ID int
}

// ToastModel shows one short status line at a time in the footer.
type ToastModel struct {
	message string
	level   ToastLevel
	shown   bool
	seq     int
	styles  Styles
}

func NewToastModel() *ToastModel {
	return &ToastModel{styles: DefaultStyles()}
}

// Show replaces the current toast and returns the command that expires it.
// A non-positive lifetime uses the level's default.
func (m *ToastModel) Show(message string, level ToastLevel, lifetime time.Duration) tea.Cmd {
	if lifetime <= 0 {
		lifetime = toastLifetimes[level]
	}
	m.seq++
	id := m.seq
	m.message, m.level, m.shown = message, level, true
	return tea.Tick(lifetime, func(time.Time) tea.Msg { return ToastDismissed{ID: id} })
}

func (m *ToastModel) ShowInfo(message string) tea.Cmd    { return m.Show(message, LevelInfo, 0) }
func (m *ToastModel) ShowSuccess(message string) tea.Cmd { return m.Show(message, LevelSuccess, 0) }
func (m *ToastModel) ShowWarning(message string) tea.Cmd { return m.Show(message, LevelWarning, 0) }
func (m *ToastModel) ShowError(message string) tea.Cmd   { return m.Show(message, LevelError, 0) }

// Update hides the toast when its own dismissal arrives.
func (m *ToastModel) Update(msg tea.Msg) (*ToastModel, tea.Cmd) {
	if d, ok := msg.(ToastDismissed); ok && d.ID == m.seq {
		m.shown = false
	}
	return m, nil
}

func (m *ToastModel) View() string {
	if !m.shown {
		return ""
	}
	return m.style().Render(toastIcons[m.level] + " " + m.message)
}

func (m *ToastModel) style() lipgloss.Style {
	switch m.level {
	case LevelSuccess:
		return m.styles.ToastSuccess
	case LevelWarning:
		return m.styles.ToastWarning
	case LevelError:
		return m.styles.ToastError
	default:
		return m.styles.ToastInfo
	}
}

// Visible reports whether a toast is showing.
func (m *ToastModel) Visible() bool { return m.shown }

// Dismiss hides the toast now.
func (m *ToastModel) Dismiss() { m.shown = false }
