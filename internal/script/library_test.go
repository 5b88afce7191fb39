package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	root := t.TempDir()
	lib, err := OpenLibrary(filepath.Join(root, "scripts"), filepath.Join(root, "scripts", "index.json"))
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	lib.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return lib
}

func TestLibraryAddLoadList(t *testing.T) {
	lib := newTestLibrary(t)

	first, err := lib.Add("# First\nhello")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := lib.Add("# Second\nworld")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if first.Title != "First" || first.Preview != "hello" {
		t.Fatalf("entry = %+v", first)
	}

	entries, err := lib.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != second.ID {
		t.Fatalf("List should put the newest first: %+v", entries)
	}

	entry, content, err := lib.Load(first.ID[:8])
	if err != nil {
		t.Fatalf("Load by prefix: %v", err)
	}
	if entry.ID != first.ID || content != "# First\nhello" {
		t.Fatalf("Load = %+v %q", entry, content)
	}
}

func TestLibraryUpdate(t *testing.T) {
	lib := newTestLibrary(t)
	entry, err := lib.Add("# Old\nbody")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	updated, err := lib.Update(entry.ID, "# New\nchanged")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "New" || !updated.UpdatedAt.After(entry.UpdatedAt) || !updated.CreatedAt.Equal(entry.CreatedAt) {
		t.Fatalf("updated = %+v, original %+v", updated, entry)
	}
	_, content, err := lib.Load(entry.ID)
	if err != nil || content != "# New\nchanged" {
		t.Fatalf("Load = %q, %v", content, err)
	}
}

func TestLibraryRemove(t *testing.T) {
	lib := newTestLibrary(t)
	entry, err := lib.Add("gone soon")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := lib.Remove(entry.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(lib.Path(entry.ID)); !os.IsNotExist(err) {
		t.Fatalf("script file should be deleted, stat err = %v", err)
	}
	if _, _, err := lib.Load(entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load after remove = %v, want ErrNotFound", err)
	}
	if _, err := lib.Remove(entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestLibraryRemoveKeepsScriptWhenIndexWriteFails(t *testing.T) {
	lib := newTestLibrary(t)
	entry, err := lib.Add("# Keynote\nstill here")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	diskFull := errors.New("no space left on device")
	lib.write = func(string, []byte) error { return diskFull }

	if _, err := lib.Remove(entry.ID); !errors.Is(err, diskFull) {
		t.Fatalf("Remove = %v, want the index write error", err)
	}
	lib.write = writeFileAtomic
	_, content, err := lib.Load(entry.ID)
	if err != nil || content != "# Keynote\nstill here" {
		t.Fatalf("Load after failed Remove = %q, %v; want the script intact", content, err)
	}
}

func TestLibraryResolveErrors(t *testing.T) {
	entries := []Entry{{ID: "abc-1"}, {ID: "abc-2"}, {ID: "xyz"}}
	if _, err := resolve(entries, "abc"); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("resolve(abc) = %v, want ErrAmbiguous", err)
	}
	if _, err := resolve(entries, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("resolve(empty) = %v, want ErrNotFound", err)
	}
	if i, err := resolve(entries, "abc-2"); err != nil || i != 1 {
		t.Fatalf("resolve exact = %d, %v", i, err)
	}
}

func TestLibraryMissingContentReadsEmpty(t *testing.T) {
	lib := newTestLibrary(t)
	entry, err := lib.Add("text")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := os.Remove(lib.Path(entry.ID)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, content, err := lib.Load(entry.ID)
	if err != nil || content != "" {
		t.Fatalf("Load = %q, %v", content, err)
	}
}

func TestLibraryCorruptIndex(t *testing.T) {
	lib := newTestLibrary(t)
	if err := os.WriteFile(lib.indexPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := lib.List(); err == nil {
		t.Fatal("expected parse error")
	}
}
