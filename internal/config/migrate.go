package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/andyrewlee/tprompt/internal/logging"
)

// legacyFontDefaults are font sizes earlier releases shipped as defaults.
// Files still carrying one of them get the current default instead.
var legacyFontDefaults = map[int]bool{32: true, 24: true, 20: true, 12: true, 6: true}

// migratePreferences upgrades cfg from its recorded version in place and
// reports whether anything changed.
func migratePreferences(cfg *Config) bool {
	if cfg.Version >= CurrentVersion {
		return false
	}
	from := cfg.Version
	if from < 2 && legacyFontDefaults[cfg.Preferences.FontSize] {
		cfg.Preferences.FontSize = FontSizeDefault
	}
	if from < 3 {
		cfg.Preferences.EscAction = EscAsk
	}
	cfg.Version = CurrentVersion
	logging.Info("Migrated config from version %d to %d", from, CurrentVersion)
	return true
}

// LegacyHome is the data directory used before the rename, next to Home.
func (p *Paths) LegacyHome() string {
	return filepath.Join(filepath.Dir(p.Home), ".teleprompter")
}

// MigrateLegacyHome copies the legacy data directory to Home when the legacy
// one exists and Home does not. The copy is staged beside Home and renamed
// into place, so a failed run leaves no partial Home behind. The legacy
// directory is never removed. It reports whether a copy happened.
func (p *Paths) MigrateLegacyHome() (bool, error) {
	legacy := p.LegacyHome()
	info, err := os.Stat(legacy)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case !info.IsDir():
		return false, nil
	}
	if _, err := os.Lstat(p.Home); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	staging := p.Home + ".migrating"
	_ = os.RemoveAll(staging)
	if err := copyTree(legacy, staging); err != nil {
		_ = os.RemoveAll(staging)
		return false, fmt.Errorf("copy %s: %w", legacy, err)
	}
	if err := os.Rename(staging, p.Home); err != nil {
		_ = os.RemoveAll(staging)
		return false, err
	}
	logging.Info("Migrated %s -> %s", legacy, p.Home)
	return true, nil
}

// copyTree mirrors src into dst, keeping modes and symlinks as links.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case mode.IsDir():
			return os.MkdirAll(target, mode.Perm()|0o700)
		case mode.IsRegular():
			return copyRegular(path, target, mode.Perm())
		default:
			return nil
		}
	})
}

func copyRegular(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
