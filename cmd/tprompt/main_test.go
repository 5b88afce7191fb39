package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/history"
	"github.com/andyrewlee/tprompt/internal/script"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), "tprompt")
	t.Setenv(config.HomeEnv, home)
	return home
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	setupHome(t)
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "tprompt dev") {
		t.Fatalf("output = %q", out)
	}
}

func TestScriptsLifecycle(t *testing.T) {
	setupHome(t)
	path := writeScript(t, "# Keynote\n\nGood morning everyone.\n")

	out, err := runCLI(t, "", "scripts", "add", path)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, `Saved "Keynote"`) {
		t.Fatalf("add output = %q", out)
	}

	out, err = runCLI(t, "", "scripts", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Keynote") || !strings.Contains(out, "Good morning everyone.") {
		t.Fatalf("list output = %q", out)
	}

	cfg, err := config.LoadFrom(mustPaths(t))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	lib, err := script.OpenLibrary(cfg.Paths.ScriptsRoot, cfg.Paths.IndexPath)
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	entries, err := lib.List()
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, %v", entries, err)
	}
	id := entries[0].ID

	out, err = runCLI(t, "", "scripts", "show", id[:6])
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(out, "# Keynote") {
		t.Fatalf("show output = %q", out)
	}

	if _, err := runCLI(t, "", "scripts", "rm", id); err != nil {
		t.Fatalf("rm: %v", err)
	}
	out, err = runCLI(t, "", "scripts", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No saved scripts") {
		t.Fatalf("list after rm = %q", out)
	}
}

func mustPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths: %v", err)
	}
	return paths
}

func TestScriptsAddFromStdin(t *testing.T) {
	setupHome(t)
	out, err := runCLI(t, "# From a pipe\n\ntext", "scripts", "add", "-")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, `"From a pipe"`) {
		t.Fatalf("output = %q", out)
	}
}

func TestScriptsAddRejectsEmpty(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "  \n", "scripts", "add", "-"); err == nil {
		t.Fatal("expected an error for an empty script")
	}
	if _, err := runCLI(t, "", "scripts", "add"); err == nil {
		t.Fatal("expected an error without a source")
	}
}

func TestScriptsRemoveUnknown(t *testing.T) {
	setupHome(t)
	_, err := runCLI(t, "", "scripts", "rm", "nope")
	if !errors.Is(err, script.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	setupHome(t)
	out, err := runCLI(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No reading sessions yet") {
		t.Fatalf("empty output = %q", out)
	}

	store, err := history.Open(mustPaths(t).HistoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	start := time.Now().Add(-time.Hour)
	for i, title := range []string{"Morning brief", "Launch talk"} {
		err := store.Record(context.Background(), history.Session{
			ID:          title,
			Title:       title,
			Speed:       "fast",
			StartedAt:   start.Add(time.Duration(i) * time.Minute),
			EndedAt:     start.Add(time.Duration(i)*time.Minute + 90*time.Second),
			MaxProgress: 0.5,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	store.Close()

	out, err = runCLI(t, "", "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Launch talk") || strings.Contains(out, "Morning brief") {
		t.Fatalf("limited output = %q", out)
	}
	if !strings.Contains(out, "50%") || !strings.Contains(out, "1m30s") {
		t.Fatalf("output missing progress or duration: %q", out)
	}
}

func TestShouldLaunchTUI(t *testing.T) {
	tests := []struct {
		stdin, stdout bool
		want          bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, tt := range tests {
		if got := shouldLaunchTUI(tt.stdin, tt.stdout); got != tt.want {
			t.Errorf("shouldLaunchTUI(%v, %v) = %v, want %v", tt.stdin, tt.stdout, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{1400 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{61 * time.Second, "1m01s"},
		{12*time.Minute + 5*time.Second, "12m05s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") || !strings.Contains(out, "╭") {
		t.Fatalf("table = %q", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("empty headers should render nothing")
	}
}
