package main

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

const mouseThrottleInterval = 15 * time.Millisecond

// mouseThrottle drops bursts of motion and wheel events so a fast trackpad
// cannot flood the overlay. Motion to a new cell always passes; repeats at
// the same cell and wheel ticks are limited to one per interval.
type mouseThrottle struct {
	now          func() time.Time
	lastMotion   time.Time
	lastWheel    time.Time
	lastX, lastY int
}

func newMouseThrottle() *mouseThrottle {
	return &mouseThrottle{now: time.Now, lastX: -1, lastY: -1}
}

func (t *mouseThrottle) filter(_ tea.Model, msg tea.Msg) tea.Msg {
	switch msg := msg.(type) {
	case tea.MouseMotionMsg:
		now := t.now()
		if msg.X != t.lastX || msg.Y != t.lastY {
			t.lastX, t.lastY = msg.X, msg.Y
			t.lastMotion = now
			return msg
		}
		if now.Sub(t.lastMotion) < mouseThrottleInterval {
			return nil
		}
		t.lastMotion = now
	case tea.MouseWheelMsg:
		now := t.now()
		if now.Sub(t.lastWheel) < mouseThrottleInterval {
			return nil
		}
		t.lastWheel = now
	}
	return msg
}
