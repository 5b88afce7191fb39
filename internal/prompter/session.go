package prompter

import (
	"errors"
	"time"
)

// Phase is the lifecycle stage of a reading session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhasePlaying
	PhasePaused
	PhaseStopped
)

const (
	// DefaultCountdown is the number of ticks before playback starts.
	DefaultCountdown = 3
	// CountdownInterval is the spacing between countdown ticks.
	CountdownInterval = time.Second
)

var (
	// ErrNoScript is returned when a session is started without content.
	ErrNoScript = errors.New("no script loaded")
	// ErrInvalidPhase is returned for a transition the session does not allow.
	ErrInvalidPhase = errors.New("invalid phase transition")
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Active reports whether a session is in progress.
func (p Phase) Active() bool {
	return p == PhaseCountdown || p == PhasePlaying || p == PhasePaused
}

var transitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseCountdown, PhaseStopped},
	PhaseCountdown: {PhaseCountdown, PhasePlaying, PhaseIdle, PhaseStopped},
	PhasePlaying:   {PhasePaused, PhaseCountdown, PhaseStopped},
	PhasePaused:    {PhasePlaying, PhaseCountdown, PhaseStopped},
	PhaseStopped:   {PhaseIdle, PhaseCountdown},
}

func canTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
