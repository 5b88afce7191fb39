package prompter

import "time"

// Event is published to subscribers after state changes.
type Event interface {
	isEvent()
}

// PositionChanged carries a new scroll offset. Manual is set for seeks
// triggered by user input.
type PositionChanged struct {
	Position float64
	Manual   bool
}

// ProgressPublished carries a rate-limited progress value in [0,1]. Absent
// is set once the script fits the viewport; no indicator should be drawn.
type ProgressPublished struct {
	Progress float64
	Absent   bool
	At       time.Time
}

// PhaseChanged is sent on every phase change and on each countdown tick.
type PhaseChanged struct {
	From      Phase
	To        Phase
	Countdown int
}

// SpeedChanged is sent when the preset changes.
type SpeedChanged struct {
	Preset   SpeedPreset
	PxPerSec float64
}

// ContentChanged is sent when the script is replaced or cleared. Bounds are
// stale until the next SetMetrics.
type ContentChanged struct {
	Content string
}

func (PositionChanged) isEvent()   {}
func (ProgressPublished) isEvent() {}
func (PhaseChanged) isEvent()      {}
func (SpeedChanged) isEvent()      {}
func (ContentChanged) isEvent()    {}

type subscriber struct {
	id int
	fn func(Event)
}
