package common

import "charm.land/lipgloss/v2"

// Tokyo Night-inspired color palette
// Muted, accessible, easy on eyes
var (
	// Base palette
	ColorBackground = lipgloss.Color("#1a1b26") // Dark blue-gray
	ColorForeground = lipgloss.Color("#c0caf5") // Bright enough to read at a distance
	ColorMuted      = lipgloss.Color("#565f89") // Dimmed text
	ColorBorder     = lipgloss.Color("#292e42") // Subtle borders

	// Semantic colors
	ColorPrimary   = lipgloss.Color("#7aa2f7") // Blue - progress, focus
	ColorSecondary = lipgloss.Color("#bb9af7") // Purple - speed badge
	ColorSuccess   = lipgloss.Color("#9ece6a") // Green - playing
	ColorWarning   = lipgloss.Color("#e0af68") // Yellow - paused, countdown
	ColorError     = lipgloss.Color("#f7768e") // Red - errors
	ColorInfo      = lipgloss.Color("#7dcfff") // Cyan - info messages

	// Surface colors for layering
	ColorSurface1 = lipgloss.Color("#1f2335") // Slightly elevated
	ColorSurface2 = lipgloss.Color("#24283b") // More elevated
)
