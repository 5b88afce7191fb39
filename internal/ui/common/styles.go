package common

import "charm.land/lipgloss/v2"

// Styles contains the overlay chrome styles. Script text is styled by the
// render package.
type Styles struct {
	Muted       lipgloss.Style
	Placeholder lipgloss.Style
	ReadingLine lipgloss.Style

	Countdown lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	// Footer
	Footer        lipgloss.Style
	PlayBadge     lipgloss.Style
	PauseBadge    lipgloss.Style
	IdleBadge     lipgloss.Style
	SpeedBadge    lipgloss.Style
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Dialogs and the keymap guide
	DialogBox     lipgloss.Style
	DialogTitle   lipgloss.Style
	DialogMessage lipgloss.Style
	DialogOption  lipgloss.Style
	GuideGroup    lipgloss.Style

	// Toast notifications
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// DefaultStyles returns the default overlay styles.
func DefaultStyles() Styles {
	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(ColorBackground)
	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return Styles{
		Muted:       lipgloss.NewStyle().Foreground(ColorMuted),
		Placeholder: lipgloss.NewStyle().Foreground(ColorMuted).Italic(true),
		ReadingLine: lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),

		Countdown: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarning).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Padding(1, 4),

		ProgressFilled: lipgloss.NewStyle().Foreground(ColorPrimary),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(ColorBorder),

		Footer:        lipgloss.NewStyle().Background(ColorSurface1),
		PlayBadge:     badge.Background(ColorSuccess),
		PauseBadge:    badge.Background(ColorWarning),
		IdleBadge:     badge.Background(ColorMuted),
		SpeedBadge:    badge.Background(ColorSecondary),
		HintKey:       lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(ColorMuted),
		HintSeparator: lipgloss.NewStyle().Foreground(ColorBorder),

		DialogBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Background(ColorSurface2).
			Padding(1, 2),
		DialogTitle:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		DialogMessage: lipgloss.NewStyle().Foreground(ColorForeground),
		DialogOption:  lipgloss.NewStyle().Foreground(ColorInfo).Bold(true),
		GuideGroup:    lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true),

		ToastInfo:    toast.Foreground(ColorInfo),
		ToastSuccess: toast.Foreground(ColorSuccess),
		ToastWarning: toast.Foreground(ColorWarning),
		ToastError:   toast.Foreground(ColorError),
	}
}
