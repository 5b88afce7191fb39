// Package supervisor keeps background workers such as the script watcher
// alive, restarting them with backoff when they fail.
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/andyrewlee/tprompt/internal/logging"
)

// RestartPolicy controls when a worker is restarted.
type RestartPolicy int

const (
	RestartNever RestartPolicy = iota
	RestartOnError
	RestartAlways
)

type options struct {
	policy      RestartPolicy
	maxRestarts int
	backoff     time.Duration
	maxBackoff  time.Duration
	onError     func(name string, err error)
	sleep       func(context.Context, time.Duration) bool
}

// Option configures one worker.
type Option func(*options)

// WithRestartPolicy sets the restart policy.
func WithRestartPolicy(policy RestartPolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithMaxRestarts limits the number of restarts (0 = unlimited).
func WithMaxRestarts(max int) Option {
	return func(o *options) { o.maxRestarts = max }
}

// WithBackoff sets the initial delay between restarts.
func WithBackoff(d time.Duration) Option {
	return func(o *options) { o.backoff = d }
}

// WithMaxBackoff caps the delay between restarts.
func WithMaxBackoff(d time.Duration) Option {
	return func(o *options) { o.maxBackoff = d }
}

// WithErrorHandler overrides the supervisor's handler for this worker.
func WithErrorHandler(handler func(name string, err error)) Option {
	return func(o *options) { o.onError = handler }
}

// WithSleep replaces the backoff wait. sleep reports false when the wait was
// cut short by ctx.
func WithSleep(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(o *options) { o.sleep = sleep }
}

// Supervisor runs workers until its context is cancelled.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	onError  func(name string, err error)
	restarts map[string]int
}

// New creates a supervisor bound to parent.
func New(parent context.Context) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{ctx: ctx, cancel: cancel, restarts: make(map[string]int)}
}

// Context returns the supervisor context.
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// Stop cancels all workers and waits for them to exit.
func (s *Supervisor) Stop() {
	if s == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

// SetErrorHandler registers the default handler for worker errors.
func (s *Supervisor) SetErrorHandler(handler func(name string, err error)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onError = handler
	s.mu.Unlock()
}

// Restarts returns how many times the named worker has been restarted.
func (s *Supervisor) Restarts(name string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts[name]
}

// Start runs fn under supervision. Errors are reported to the error handler;
// whether fn runs again depends on the restart policy.
func (s *Supervisor) Start(name string, fn func(context.Context) error, opts ...Option) {
	if s == nil || fn == nil {
		return
	}
	cfg := options{
		policy:     RestartOnError,
		backoff:    200 * time.Millisecond,
		maxBackoff: 3 * time.Second,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxBackoff < cfg.backoff {
		cfg.maxBackoff = cfg.backoff
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		backoff := cfg.backoff
		for {
			if s.ctx.Err() != nil {
				return
			}
			err := runSafe(s.ctx, name, fn)
			if s.ctx.Err() != nil {
				return
			}
			if err != nil {
				s.reportError(cfg.onError, name, err)
			}
			if !shouldRestart(err, cfg.policy) {
				return
			}

			count := s.countRestart(name)
			if cfg.maxRestarts > 0 && count > cfg.maxRestarts {
				logging.Error("supervisor: %s exceeded max restarts (%d)", name, cfg.maxRestarts)
				return
			}
			logging.Info("supervisor: restarting %s in %s (attempt %d)", name, backoff, count)
			if backoff > 0 {
				if !cfg.sleep(s.ctx, backoff) {
					return
				}
				backoff = min(backoff*2, cfg.maxBackoff)
			}
		}
	}()
}

func (s *Supervisor) reportError(override func(string, error), name string, err error) {
	handler := override
	if handler == nil {
		s.mu.Lock()
		handler = s.onError
		s.mu.Unlock()
	}
	if handler != nil {
		handler(name, err)
		return
	}
	logging.Warn("supervisor: %s failed: %v", name, err)
}

func (s *Supervisor) countRestart(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarts[name]++
	return s.restarts[name]
}

func shouldRestart(err error, policy RestartPolicy) bool {
	switch policy {
	case RestartAlways:
		return true
	case RestartOnError:
		return err != nil
	default:
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func runSafe(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", name, r)
			logging.Error("%v\n%s", err, debug.Stack())
		}
	}()
	return fn(ctx)
}
