package dealstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgirard/rentadesk/internal/rentab"
)

func newFileStore(t *testing.T, path string) *FileStore {
	t.Helper()
	fs, err := NewFileStore(path, Config{WatchWaitMax: time.Second})
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return fs
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	fs := newFileStore(t, path)
	written, err := fs.Write("deal-1", testSnapshot())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	reopened := newFileStore(t, path)
	got, err := reopened.Read("deal-1")
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if got == nil {
		t.Fatal("snapshot lost across restart")
	}
	if got.Scenarios.Base.TotalCost != written.Scenarios.Base.TotalCost {
		t.Fatalf("total cost drifted across restart: got %v want %v",
			got.Scenarios.Base.TotalCost, written.Scenarios.Base.TotalCost)
	}
	if !got.UpdatedAt.Equal(written.UpdatedAt) {
		t.Fatalf("UpdatedAt drifted across restart: got %v want %v", got.UpdatedAt, written.UpdatedAt)
	}
}

func TestFileStorePersistsPatchAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	fs := newFileStore(t, path)
	if _, err := fs.Write("deal-1", testSnapshot()); err != nil {
		t.Fatalf("write: %v", err)
	}
	in := rentab.Input{Strategy: rentab.StrategyResale, PurchasePrice: 123456}
	if _, err := fs.Patch("deal-1", Patch{Input: &in}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	reopened := newFileStore(t, path)
	got, err := reopened.Read("deal-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got == nil || got.Input.PurchasePrice != 123456 {
		t.Fatalf("patched input not persisted: %+v", got)
	}

	if err := reopened.Clear("deal-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	final := newFileStore(t, path)
	if got, _ := final.Read("deal-1"); got != nil {
		t.Fatalf("cleared snapshot survived restart: %+v", got)
	}
}

func TestFileStorePatchWithoutBaseDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	fs := newFileStore(t, path)
	in := rentab.Input{Strategy: rentab.StrategyResale, PurchasePrice: 1}
	out, err := fs.Patch("deal-1", Patch{Input: &in})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil result for patch without base, got %+v", out)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no-op patch must not create the persistence file")
	}
}

func TestFileStoreWatchCursorSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")

	fs := newFileStore(t, path)
	if _, err := fs.Write("deal-1", testSnapshot()); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, cursor := fs.WatchSince(0, "", 0)
	if cursor == 0 {
		t.Fatal("expected non-zero cursor after write")
	}

	reopened := newFileStore(t, path)
	if _, err := reopened.Write("deal-1", testSnapshot()); err != nil {
		t.Fatalf("write after reopen: %v", err)
	}
	events, next := reopened.WatchSince(cursor, "", 0)
	if len(events) != 1 {
		t.Fatalf("expected 1 fresh event past old cursor, got %d", len(events))
	}
	if next <= cursor {
		t.Fatalf("change ids must stay monotonic across restart: %d then %d", cursor, next)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, err := NewFileStore(path, Config{}); err == nil {
		t.Fatal("expected error opening corrupt persistence file")
	}
}

func TestFileStoreHealthReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	fs := newFileStore(t, path)
	h := fs.Health()
	if h["backend"] != "file" {
		t.Fatalf("expected file backend, got %v", h["backend"])
	}
	if h["path"] != path {
		t.Fatalf("expected path %q, got %v", path, h["path"])
	}
}

func TestFileStoreHealthConcurrentWithWrites(t *testing.T) {
	fs := newFileStore(t, filepath.Join(t.TempDir(), "snapshots.json"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			if _, err := fs.Write("deal-1", testSnapshot()); err != nil {
				t.Errorf("write: %v", err)
				return
			}
		}
	}()
	for i := 0; i < 50; i++ {
		if h := fs.Health(); h["backend"] != "file" {
			t.Fatalf("expected file backend, got %v", h["backend"])
		}
	}
	<-done
}
