// Package prompter implements the teleprompter scroll engine: a frame-driven
// playback clock, bounds clamping, throttled progress reporting and the
// reading-session state machine. It has no terminal dependency; time and
// frame scheduling are injected so callers decide what a "frame" is.
//
// A Controller and everything it owns must be driven from a single goroutine.
package prompter

import "time"

// Clock is the monotonic time source read by the engine.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Time carries a monotonic reading, so
// deltas between two Now calls are immune to wall-clock adjustments.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
