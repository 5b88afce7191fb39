// Package safego runs background work that must not take the process down
// with it.
package safego

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/tprompt/internal/logging"
)

// Run calls fn and logs a panic instead of propagating it. It reports whether
// fn panicked. Runtime-fatal errors such as concurrent map writes still crash.
func Run(name string, fn func()) (panicked bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		panicked = true
		if name == "" {
			name = "background task"
		}
		logging.Error("panic in %s: %v\n%s", name, r, debug.Stack())
	}()
	fn()
	return false
}

// Group tracks background writes so shutdown can wait for them.
// The zero value is ready to use.
type Group struct {
	wg     sync.WaitGroup
	panics atomic.Int32
}

// Go runs fn on its own goroutine through Run.
func (g *Group) Go(name string, fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if Run(name, fn) {
			g.panics.Add(1)
		}
	}()
}

// Panics returns how many tracked functions have panicked.
func (g *Group) Panics() int { return int(g.panics.Load()) }

// Wait blocks until every tracked goroutine returns or timeout elapses and
// reports whether they all finished. A non-positive timeout waits forever.
func (g *Group) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	if timeout <= 0 {
		<-done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		logging.Warn("gave up waiting for background work after %s", timeout)
		return false
	}
}
