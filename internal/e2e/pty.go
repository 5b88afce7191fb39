//go:build !windows

// Package e2e drives the tprompt binary under a pseudo terminal.
package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"
)

const (
	defaultTimeout = 10 * time.Second
	pollInterval   = 50 * time.Millisecond
	killGrace      = 500 * time.Millisecond
)

// Options configures a terminal. Setup runs against the data directory
// before the process starts.
type Options struct {
	Cols, Rows int
	Args       []string
	Env        []string
	Setup      func(home string) error
	Timeout    time.Duration
}

// Terminal is one tprompt process attached to a pty. It is torn down by the
// test's cleanup.
type Terminal struct {
	t       testing.TB
	cmd     *exec.Cmd
	pty     *os.File
	home    string
	timeout time.Duration
	changed chan struct{}
	exited  chan struct{}

	mu  sync.Mutex
	raw bytes.Buffer
}

// Start builds tprompt once per test binary and runs it with opts.
func Start(t testing.TB, opts Options) *Terminal {
	t.Helper()
	bin, err := binary()
	if err != nil {
		t.Fatalf("build tprompt: %v", err)
	}
	opts.Cols = cmpOr(opts.Cols, 100)
	opts.Rows = cmpOr(opts.Rows, 30)

	home := t.TempDir()
	if opts.Setup != nil {
		if err := opts.Setup(home); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	cmd := exec.Command(bin, opts.Args...)
	// creack/pty already sets Setsid; adding Setpgid fails with EPERM on BSDs.
	cmd.SysProcAttr = &syscall.SysProcAttr{}
	cmd.Env = append(isolatedEnv(os.Environ()),
		"TPROMPT_HOME="+home,
		"TERM=xterm-256color",
		"TPROMPT_PROFILE=0",
	)
	cmd.Env = append(cmd.Env, opts.Env...)

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(opts.Cols), Rows: uint16(opts.Rows)})
	if err != nil {
		t.Fatalf("start tprompt: %v", err)
	}
	term := &Terminal{
		t:       t,
		cmd:     cmd,
		pty:     f,
		home:    home,
		timeout: opts.Timeout,
		changed: make(chan struct{}, 1),
		exited:  make(chan struct{}),
	}
	if term.timeout <= 0 {
		term.timeout = defaultTimeout
	}
	go term.pump()
	t.Cleanup(term.stop)
	return term
}

// Home returns the data directory the process runs against.
func (term *Terminal) Home() string { return term.home }

// Type sends raw input.
func (term *Terminal) Type(text string) {
	term.t.Helper()
	if _, err := term.pty.Write([]byte(text)); err != nil {
		term.t.Fatalf("type %q: %v", text, err)
	}
}

// Screen returns everything printed so far with escape sequences removed.
func (term *Terminal) Screen() string {
	term.mu.Lock()
	defer term.mu.Unlock()
	return ansi.Strip(term.raw.String())
}

// Expect waits until the output contains substr.
func (term *Terminal) Expect(substr string) {
	term.t.Helper()
	if !term.waitUntil(func() bool { return strings.Contains(term.Screen(), substr) }) {
		term.t.Fatalf("timed out waiting for %q\n\nscreen:\n%s", substr, term.Screen())
	}
}

// ExpectExit waits for the process to close the terminal.
func (term *Terminal) ExpectExit() {
	term.t.Helper()
	exited := func() bool {
		select {
		case <-term.exited:
			return true
		default:
			return false
		}
	}
	if !term.waitUntil(exited) {
		term.t.Fatalf("tprompt still running after %s", term.timeout)
	}
}

func (term *Terminal) waitUntil(done func() bool) bool {
	deadline := time.After(term.timeout)
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	exited := term.exited
	for !done() {
		select {
		case <-term.changed:
		case <-exited:
			exited = nil
		case <-poll.C:
		case <-deadline:
			return done()
		}
	}
	return true
}

func (term *Terminal) pump() {
	defer close(term.exited)
	buf := make([]byte, 4096)
	for {
		n, err := term.pty.Read(buf)
		if n > 0 {
			term.mu.Lock()
			term.raw.Write(buf[:n])
			term.mu.Unlock()
			select {
			case term.changed <- struct{}{}:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

func (term *Terminal) stop() {
	_ = term.pty.Close()
	if term.cmd.Process == nil {
		return
	}
	_ = term.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-term.exited:
	case <-time.After(killGrace):
		_ = term.cmd.Process.Kill()
	}
	_, _ = term.cmd.Process.Wait()
}

func cmpOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

var binary = sync.OnceValues(func() (string, error) {
	if bin := os.Getenv("TPROMPT_E2E_BIN"); bin != "" {
		return bin, nil
	}
	root, err := moduleRoot()
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "tprompt-e2e-bin-*")
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, "tprompt")
	cmd := exec.Command("go", "build", "-o", out, "./cmd/tprompt")
	cmd.Dir = root
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out, nil
})
