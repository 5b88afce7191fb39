package e2e

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// isolatedEnv drops inherited tprompt settings so a developer's own
// TPROMPT_HOME or profiling flags never reach the binary under test.
func isolatedEnv(env []string) []string {
	out := env[:0:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "TPROMPT_") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// moduleRoot walks up from the working directory to the directory holding go.mod.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for parent := filepath.Dir(dir); ; dir, parent = parent, filepath.Dir(parent) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if parent == dir {
			return "", errors.New("e2e: go.mod not found above the working directory")
		}
	}
}
