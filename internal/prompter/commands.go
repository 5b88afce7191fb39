package prompter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned for commands the controller does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a named message accepted by Controller.Handle, independent of
// how it was delivered.
type Command interface {
	Name() string
}

// LoadScript replaces the script content without starting a session.
type LoadScript struct {
	Content string
}

// StartCountdown begins a session with the current content.
type StartCountdown struct{}

// TogglePlay flips between playing and paused.
type TogglePlay struct{}

// CycleSpeed advances to the next speed preset.
type CycleSpeed struct{}

// Rewind moves back by the configured viewport fraction.
type Rewind struct{}

// ScrollUp steps back by the configured step.
type ScrollUp struct{}

// ScrollDown steps forward by the configured step.
type ScrollDown struct{}

func (LoadScript) Name() string     { return "load-script" }
func (StartCountdown) Name() string { return "start-countdown" }
func (TogglePlay) Name() string     { return "toggle-play" }
func (CycleSpeed) Name() string     { return "cycle-speed" }
func (Rewind) Name() string         { return "rewind" }
func (ScrollUp) Name() string       { return "scroll-up" }
func (ScrollDown) Name() string     { return "scroll-down" }

// ParseCommand builds a command from its name. payload is only used by
// load-script.
func ParseCommand(name, payload string) (Command, error) {
	switch strings.TrimSpace(name) {
	case "load-script":
		return LoadScript{Content: payload}, nil
	case "start-countdown":
		return StartCountdown{}, nil
	case "toggle-play":
		return TogglePlay{}, nil
	case "cycle-speed":
		return CycleSpeed{}, nil
	case "rewind":
		return Rewind{}, nil
	case "scroll-up":
		return ScrollUp{}, nil
	case "scroll-down":
		return ScrollDown{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}
