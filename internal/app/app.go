// Package app wires the teleprompter overlay to the config file, the session
// history and the script watcher, and owns the process-wide lock.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/gofrs/flock"

	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/history"
	"github.com/andyrewlee/tprompt/internal/logging"
	"github.com/andyrewlee/tprompt/internal/perf"
	"github.com/andyrewlee/tprompt/internal/prompter"
	"github.com/andyrewlee/tprompt/internal/safego"
	"github.com/andyrewlee/tprompt/internal/script"
	"github.com/andyrewlee/tprompt/internal/supervisor"
	"github.com/andyrewlee/tprompt/internal/ui/overlay"
	"github.com/andyrewlee/tprompt/internal/watch"
)

// ErrAlreadyRunning is returned when another tprompt holds the lock.
var ErrAlreadyRunning = errors.New("tprompt is already running")

const (
	watcherName     = "script-watcher"
	shutdownTimeout = 2 * time.Second
	recordTimeout   = 5 * time.Second
)

// Options selects what the overlay opens with.
type Options struct {
	// Content is the script text. Empty opens the placeholder.
	Content string
	// SourcePath is watched for edits while the overlay is open.
	SourcePath string
	// ScriptID names a library script for the history.
	ScriptID string
	// AutoStart begins the countdown right away.
	AutoStart bool
	// Speed overrides the saved preset for this run.
	Speed string
}

// App is one overlay run.
type App struct {
	cfg  *config.Config
	opts Options

	lock     *flock.Flock
	history  *history.Store
	recorder *history.Recorder
	model    *overlay.Model

	sup   *supervisor.Supervisor
	saves safego.Group

	mu   sync.Mutex
	send func(tea.Msg)

	shutdownOnce sync.Once
}

// New takes the lock, opens the history and builds the overlay. A history
// that cannot be opened is logged and skipped.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil || cfg.Paths == nil {
		return nil, errors.New("app: missing config")
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create data dirs: %w", err)
	}

	lock := flock.New(cfg.Paths.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", cfg.Paths.LockPath, err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	a := &App{cfg: cfg, opts: opts, lock: lock}

	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		logging.Warn("history disabled: %v", err)
	} else {
		a.history = store
	}

	prefs := cfg.Preferences
	if opts.Speed != "" {
		if preset, err := prompter.ParseSpeedPreset(opts.Speed); err == nil {
			prefs.Speed = preset.String()
		} else {
			logging.Warn("ignoring speed %q: %v", opts.Speed, err)
		}
	}

	a.recorder = history.NewRecorder(time.Now, a.describe, a.saveSession)
	frame := overlay.DefaultFrameInterval
	if prefs.FPS > 0 {
		frame = time.Second / time.Duration(prefs.FPS)
	}
	a.model = overlay.New(overlay.Options{
		Preferences:   prefs,
		KeyMap:        cfg.KeyMap,
		Content:       opts.Content,
		AutoStart:     opts.AutoStart,
		FrameInterval: frame,
		OnPreferences: a.savePreferences,
		OnGeometry:    a.saveGeometry,
		Observers:     []func(prompter.Event){a.recorder.Observe},
	})
	return a, nil
}

// Model returns the overlay for the bubbletea program.
func (a *App) Model() *overlay.Model { return a.model }

// SetMsgSender sets the function used to deliver messages from background
// goroutines into the program.
func (a *App) SetMsgSender(send func(tea.Msg)) {
	a.mu.Lock()
	a.send = send
	a.mu.Unlock()
}

func (a *App) sendMsg(msg tea.Msg) {
	a.mu.Lock()
	send := a.send
	a.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Run drives the overlay until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context, opts ...tea.ProgramOption) error {
	defer a.Shutdown()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(a.model, opts...)
	a.SetMsgSender(p.Send)

	a.startWatcher(ctx)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// startWatcher reloads the source file into the overlay while it is edited.
func (a *App) startWatcher(ctx context.Context) {
	if a.opts.SourcePath == "" {
		return
	}
	a.sup = supervisor.New(ctx)
	a.sup.SetErrorHandler(func(name string, err error) {
		logging.Warn("%s: %v", name, err)
	})
	path := a.opts.SourcePath
	a.sup.Start(watcherName, func(ctx context.Context) error {
		w, err := watch.New(path, watch.DefaultDebounce, a.reload)
		if err != nil {
			return err
		}
		defer w.Close()
		logging.Info("watching %s", w.Path())
		return w.Run(ctx)
	}, supervisor.WithMaxRestarts(5))
}

func (a *App) reload(content string) {
	perf.Count("script_reload", 1)
	a.sendMsg(overlay.ReloadMsg{Content: content})
}

// Shutdown saves the open session and releases everything New acquired.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.sup != nil {
			a.sup.Stop()
		}
		a.model.Close()
		a.recorder.Flush()
		if !a.saves.Wait(shutdownTimeout) {
			logging.Warn("shutdown: history writes still pending")
		}
		if n := a.saves.Panics(); n > 0 {
			logging.Warn("shutdown: %d history writes panicked", n)
		}
		if a.history != nil {
			if err := a.history.Close(); err != nil {
				logging.Warn("close history: %v", err)
			}
		}
		if err := a.lock.Unlock(); err != nil {
			logging.Warn("release lock: %v", err)
		}
		perf.Flush("shutdown")
	})
}

// describe names the session the recorder is opening. Runs on the
// bubbletea goroutine.
func (a *App) describe() (scriptID, title, speed string) {
	ctrl := a.model.Controller()
	return a.opts.ScriptID, script.Describe(ctrl.Content()).Title, ctrl.Speed().String()
}
