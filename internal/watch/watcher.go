// Package watch reloads a script file when it changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andyrewlee/tprompt/internal/logging"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 150 * time.Millisecond

// FileWatcher reports the content of one file after it settles. The parent
// directory is watched so editors that save by rename keep being tracked.
type FileWatcher struct {
	watcher *fsnotify.Watcher

	path string
	dir  string

	onChanged func(content string)
	debounce  time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	closed    bool
	closeOnce sync.Once
}

// New watches path and calls onChanged with its content after each change.
// onChanged runs on a timer goroutine.
func New(path string, debounce time.Duration, onChanged func(content string)) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw := &FileWatcher{
		watcher:   watcher,
		path:      filepath.Clean(abs),
		dir:       filepath.Dir(abs),
		onChanged: onChanged,
		debounce:  debounce,
	}
	if err := watcher.Add(fw.dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return fw, nil
}

// Path returns the watched file.
func (fw *FileWatcher) Path() string { return fw.path }

// Run consumes filesystem events until ctx is done or the watcher closes.
func (fw *FileWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if fw.isFileEvent(event) {
				fw.scheduleNotify()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch: %s: %v", fw.path, err)
		}
	}
}

// Close stops the watcher and drops any pending notification.
func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		fw.mu.Lock()
		fw.closed = true
		if fw.timer != nil {
			fw.timer.Stop()
			fw.timer = nil
		}
		fw.mu.Unlock()
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) isFileEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (fw *FileWatcher) scheduleNotify() {
	if fw.onChanged == nil {
		return
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	if fw.timer == nil {
		fw.timer = time.AfterFunc(fw.debounce, fw.fire)
	} else {
		fw.timer.Reset(fw.debounce)
	}
}

func (fw *FileWatcher) fire() {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return
	}
	fw.timer = nil
	fw.mu.Unlock()

	data, err := os.ReadFile(fw.path)
	if err != nil {
		// A rename-based save may not have landed yet; the create event
		// that follows schedules another read.
		logging.Debug("watch: read %s: %v", fw.path, err)
		return
	}
	fw.onChanged(string(data))
}
