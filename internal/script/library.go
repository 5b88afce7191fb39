package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no script matches a reference.
	ErrNotFound = errors.New("script not found")
	// ErrAmbiguous is returned when an id prefix matches several scripts.
	ErrAmbiguous = errors.New("script reference is ambiguous")
)

const indexVersion = 1

// Entry is the index record of one stored script.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type index struct {
	Version int     `json:"version"`
	Scripts []Entry `json:"scripts"`
}

// Library stores scripts as <id>.md files next to a JSON index. Index
// updates hold a file lock so concurrent tprompt processes do not lose
// writes.
type Library struct {
	root      string
	indexPath string
	lock      *flock.Flock
	now       func() time.Time
	write     func(path string, data []byte) error
}

// OpenLibrary prepares a library rooted at root with its index at indexPath.
func OpenLibrary(root, indexPath string) (*Library, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create scripts dir: %w", err)
	}
	return &Library{
		root:      root,
		indexPath: indexPath,
		lock:      flock.New(indexPath + ".lock"),
		now:       func() time.Time { return time.Now().UTC() },
		write:     writeFileAtomic,
	}, nil
}

// Path returns the markdown file for id.
func (l *Library) Path(id string) string {
	return filepath.Join(l.root, id+".md")
}

// List returns all scripts, most recently updated first.
func (l *Library) List() ([]Entry, error) {
	idx, err := l.readIndex()
	if err != nil {
		return nil, err
	}
	entries := append([]Entry(nil), idx.Scripts...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// Add stores content as a new script.
func (l *Library) Add(content string) (Entry, error) {
	var entry Entry
	err := l.withLock(func(idx *index) error {
		now := l.now()
		meta := Describe(content)
		entry = Entry{
			ID:        uuid.NewString(),
			Title:     meta.Title,
			Preview:   meta.Preview,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := writeFileAtomic(l.Path(entry.ID), []byte(content)); err != nil {
			return fmt.Errorf("write script: %w", err)
		}
		idx.Scripts = append(idx.Scripts, entry)
		return nil
	})
	return entry, err
}

// Update replaces the content of an existing script.
func (l *Library) Update(ref, content string) (Entry, error) {
	var entry Entry
	err := l.withLock(func(idx *index) error {
		i, err := resolve(idx.Scripts, ref)
		if err != nil {
			return err
		}
		meta := Describe(content)
		e := &idx.Scripts[i]
		e.Title = meta.Title
		e.Preview = meta.Preview
		e.UpdatedAt = l.now()
		if err := writeFileAtomic(l.Path(e.ID), []byte(content)); err != nil {
			return fmt.Errorf("write script: %w", err)
		}
		entry = *e
		return nil
	})
	return entry, err
}

// Load returns the entry and content for an id or unique id prefix. A
// missing content file reads as an empty script.
func (l *Library) Load(ref string) (Entry, string, error) {
	idx, err := l.readIndex()
	if err != nil {
		return Entry{}, "", err
	}
	i, err := resolve(idx.Scripts, ref)
	if err != nil {
		return Entry{}, "", err
	}
	entry := idx.Scripts[i]
	data, err := os.ReadFile(l.Path(entry.ID))
	if err != nil {
		if os.IsNotExist(err) {
			return entry, "", nil
		}
		return Entry{}, "", fmt.Errorf("read script: %w", err)
	}
	return entry, string(data), nil
}

// Remove deletes a script's index record, then its file. A failed index
// write leaves both in place.
func (l *Library) Remove(ref string) (Entry, error) {
	var removed Entry
	err := l.withLock(func(idx *index) error {
		i, err := resolve(idx.Scripts, ref)
		if err != nil {
			return err
		}
		removed = idx.Scripts[i]
		idx.Scripts = append(idx.Scripts[:i], idx.Scripts[i+1:]...)
		return nil
	}, func() error {
		if err := os.Remove(l.Path(removed.ID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove script: %w", err)
		}
		return nil
	})
	return removed, err
}

func resolve(entries []Entry, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrNotFound
	}
	match := -1
	for i, e := range entries {
		if e.ID == ref {
			return i, nil
		}
		if strings.HasPrefix(e.ID, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return match, nil
}

// withLock applies fn to the index under the file lock and writes it back.
// Each committed func runs after the write succeeds, still under the lock.
func (l *Library) withLock(fn func(idx *index) error, committed ...func() error) error {
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("lock index: %w", err)
	}
	defer func() { _ = l.lock.Unlock() }()

	idx, err := l.readIndex()
	if err != nil {
		return err
	}
	if err := fn(idx); err != nil {
		return err
	}
	idx.Version = indexVersion
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if err := l.write(l.indexPath, data); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	for _, after := range committed {
		if err := after(); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) readIndex() (*index, error) {
	idx := &index{Version: indexVersion}
	data, err := os.ReadFile(l.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", l.indexPath, err)
	}
	return idx, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
