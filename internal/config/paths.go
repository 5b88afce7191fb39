package config

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the data directory, mainly for tests and e2e runs.
const HomeEnv = "TPROMPT_HOME"

// Paths holds all the file system paths used by the application
type Paths struct {
	Home        string // ~/.tprompt
	ConfigPath  string // ~/.tprompt/config.json
	ScriptsRoot string // ~/.tprompt/scripts
	IndexPath   string // ~/.tprompt/scripts/index.json
	HistoryPath string // ~/.tprompt/history.db
	LockPath    string // ~/.tprompt/tprompt.lock
	LogsRoot    string // ~/.tprompt/logs
}

// DefaultPaths returns the default paths configuration
func DefaultPaths() (*Paths, error) {
	if override := strings.TrimSpace(os.Getenv(HomeEnv)); override != "" {
		return PathsAt(override), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return PathsAt(filepath.Join(home, ".tprompt")), nil
}

// PathsAt lays out every path under root.
func PathsAt(root string) *Paths {
	scripts := filepath.Join(root, "scripts")
	return &Paths{
		Home:        root,
		ConfigPath:  filepath.Join(root, "config.json"),
		ScriptsRoot: scripts,
		IndexPath:   filepath.Join(scripts, "index.json"),
		HistoryPath: filepath.Join(root, "history.db"),
		LockPath:    filepath.Join(root, "tprompt.lock"),
		LogsRoot:    filepath.Join(root, "logs"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Home,
		p.ScriptsRoot,
		p.LogsRoot,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
