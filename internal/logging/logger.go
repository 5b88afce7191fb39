// Package logging writes tprompt's diagnostic log, one file per day. The TUI
// owns the terminal, so nothing goes to stderr; until Initialize runs every
// call is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

const (
	filePrefix = "tprompt-"
	stampFmt   = "2006-01-02 15:04:05.000"
)

var levelNames = [...]string{LevelDebug: "DEBUG", LevelInfo: "INFO", LevelWarn: "WARN", LevelError: "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a config value such as "warn" to a Level.
// Unknown or empty values fall back to LevelInfo.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// sink is the open log file.
type sink struct {
	mu    sync.Mutex
	file  *os.File
	path  string
	level Level
	muted atomic.Bool
	buf   []byte
}

var defaultLogger *sink

// Initialize opens today's log file in logDir and drops lines below level.
// A previously opened file is closed.
func Initialize(logDir string, level Level) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(logDir, filePrefix+time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	_ = Close()
	defaultLogger = &sink{file: f, path: path, level: level}
	return nil
}

// Prune deletes all but the newest keep log files in logDir.
// Files that do not look like tprompt logs are left alone.
func Prune(logDir string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		names = append(names, name)
	}
	if len(names) <= keep {
		return 0, nil
	}

	// Date-stamped names sort chronologically.
	sort.Strings(names)
	removed := 0
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// SetEnabled mutes or unmutes the log without closing it.
func SetEnabled(enabled bool) {
	if s := defaultLogger; s != nil {
		s.muted.Store(!enabled)
	}
}

// log writes one line. Multi-line messages such as panic stacks keep their
// continuation lines indented under the header.
func log(level Level, format string, args ...any) {
	s := defaultLogger
	if s == nil || level < s.level || s.muted.Load() {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	msg = strings.ReplaceAll(msg, "\n", "\n    ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = s.buf[:0]
	s.buf = append(s.buf, '[')
	s.buf = time.Now().AppendFormat(s.buf, stampFmt)
	s.buf = append(s.buf, "] "...)
	s.buf = append(s.buf, level.String()...)
	s.buf = append(s.buf, ": "...)
	s.buf = append(s.buf, msg...)
	s.buf = append(s.buf, '\n')
	_, _ = s.file.Write(s.buf)
}

func Debug(format string, args ...any) { log(LevelDebug, format, args...) }
func Info(format string, args ...any)  { log(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { log(LevelWarn, format, args...) }
func Error(format string, args ...any) { log(LevelError, format, args...) }

// WithError logs err under context at error level. A nil err is skipped.
func WithError(err error, context string) {
	if err != nil {
		log(LevelError, "%s: %v", context, err)
	}
}

// Close closes the log file. Later calls are no-ops until Initialize.
func Close() error {
	s := defaultLogger
	if s == nil {
		return nil
	}
	defaultLogger = nil
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// GetLogPath returns the open log file, or "" before Initialize.
func GetLogPath() string {
	if s := defaultLogger; s != nil {
		return s.path
	}
	return ""
}
