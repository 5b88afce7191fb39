package render

import "charm.land/lipgloss/v2"

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorHeading = lipgloss.Color("#7aa2f7")
	colorAccent  = lipgloss.Color("#bb9af7")
	colorMuted   = lipgloss.Color("#565f89")
	colorCode    = lipgloss.Color("#9ece6a")
	colorLink    = lipgloss.Color("#7dcfff")
)

// Styles controls how script blocks and inline spans are drawn.
type Styles struct {
	Body     lipgloss.Style
	Heading1 lipgloss.Style
	Heading2 lipgloss.Style
	Heading3 lipgloss.Style
	Quote    lipgloss.Style
	QuoteBar lipgloss.Style
	Bullet   lipgloss.Style
	CodeBody lipgloss.Style
	Rule     lipgloss.Style

	Strong     lipgloss.Style
	Emphasis   lipgloss.Style
	InlineCode lipgloss.Style
	Link       lipgloss.Style
}

// DefaultStyles returns the styles used by the overlay.
func DefaultStyles() Styles {
	return Styles{
		Body:     lipgloss.NewStyle().Foreground(colorText),
		Heading1: lipgloss.NewStyle().Foreground(colorHeading).Bold(true).Underline(true),
		Heading2: lipgloss.NewStyle().Foreground(colorHeading).Bold(true),
		Heading3: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Quote:    lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		QuoteBar: lipgloss.NewStyle().Foreground(colorAccent),
		Bullet:   lipgloss.NewStyle().Foreground(colorAccent),
		CodeBody: lipgloss.NewStyle().Foreground(colorCode),
		Rule:     lipgloss.NewStyle().Foreground(colorMuted),

		Strong:     lipgloss.NewStyle().Foreground(colorText).Bold(true),
		Emphasis:   lipgloss.NewStyle().Foreground(colorText).Italic(true),
		InlineCode: lipgloss.NewStyle().Foreground(colorCode),
		Link:       lipgloss.NewStyle().Foreground(colorLink).Underline(true),
	}
}

// PlainStyles renders without any escape sequences.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Body: plain, Heading1: plain, Heading2: plain, Heading3: plain,
		Quote: plain, QuoteBar: plain, Bullet: plain, CodeBody: plain, Rule: plain,
		Strong: plain, Emphasis: plain, InlineCode: plain, Link: plain,
	}
}
