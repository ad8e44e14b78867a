package media

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *StagingStore {
	t.Helper()
	store, err := NewStagingStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStagingStore() error = %v", err)
	}
	return store
}

func TestStagingStore_StageAndOpen(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Stage(strings.NewReader("voice bytes"), ".m4a")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if !ref.IsLocal() {
		t.Fatalf("Stage() returned non-local ref %v", ref)
	}
	if filepath.Ext(ref.Path()) != ".m4a" {
		t.Errorf("staged file ext = %q, want .m4a", filepath.Ext(ref.Path()))
	}

	rc, err := store.Open(ref.Path())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if string(data) != "voice bytes" {
		t.Errorf("staged content = %q, want %q", data, "voice bytes")
	}
}

func TestStagingStore_StageNormalizesExtension(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Stage(strings.NewReader("x"), "jpg")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if filepath.Ext(ref.Path()) != ".jpg" {
		t.Errorf("ext = %q, want .jpg", filepath.Ext(ref.Path()))
	}
}

func TestStagingStore_OpenRejectsOutsidePaths(t *testing.T) {
	store := newTestStore(t)

	for _, path := range []string{"/etc/passwd", "../escape", "a/../../escape"} {
		if _, err := store.Open(path); err == nil {
			t.Errorf("Open(%q) expected containment error", path)
		}
	}
}

func TestStagingStore_Remove(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Stage(strings.NewReader("x"), ".jpg")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if err := store.Remove(ref.Path()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(ref.Path()); !os.IsNotExist(err) {
		t.Errorf("file still present after Remove(): %v", err)
	}
}

func TestStagingStore_Sweep(t *testing.T) {
	store := newTestStore(t)

	old, err := store.Stage(strings.NewReader("old"), ".jpg")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old.Path(), stale, stale); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	fresh, err := store.Stage(strings.NewReader("fresh"), ".jpg")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	removed, err := store.Sweep(time.Hour)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed = %d, want 1", removed)
	}

	if _, err := os.Stat(old.Path()); !os.IsNotExist(err) {
		t.Error("stale file survived sweep")
	}
	if _, err := os.Stat(fresh.Path()); err != nil {
		t.Errorf("fresh file removed by sweep: %v", err)
	}
}
