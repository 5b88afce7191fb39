package prompter

import (
	"fmt"
	"strings"
)

// SpeedPreset names a scroll speed. The zero value means "unset".
type SpeedPreset int

const (
	SpeedSlow SpeedPreset = iota + 1
	SpeedMedium
	SpeedFast
)

// DefaultSpeed is used when no preset is configured.
const DefaultSpeed = SpeedMedium

// DefaultSpeeds maps presets to px/s.
func DefaultSpeeds() map[SpeedPreset]float64 {
	return map[SpeedPreset]float64{
		SpeedSlow:   30,
		SpeedMedium: 52,
		SpeedFast:   82,
	}
}

func (s SpeedPreset) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedMedium:
		return "medium"
	case SpeedFast:
		return "fast"
	default:
		return fmt.Sprintf("SpeedPreset(%d)", int(s))
	}
}

// Label is the display name.
func (s SpeedPreset) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	name := s.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Valid reports whether s is a known preset.
func (s SpeedPreset) Valid() bool {
	return s >= SpeedSlow && s <= SpeedFast
}

// Next cycles slow -> medium -> fast -> slow.
func (s SpeedPreset) Next() SpeedPreset {
	switch s {
	case SpeedSlow:
		return SpeedMedium
	case SpeedMedium:
		return SpeedFast
	default:
		return SpeedSlow
	}
}

// ParseSpeedPreset parses "slow", "medium" or "fast".
func ParseSpeedPreset(raw string) (SpeedPreset, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "slow":
		return SpeedSlow, nil
	case "medium", "normal":
		return SpeedMedium, nil
	case "fast":
		return SpeedFast, nil
	default:
		return 0, fmt.Errorf("unknown speed %q (want slow, medium or fast)", raw)
	}
}
