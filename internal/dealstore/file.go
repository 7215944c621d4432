package dealstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mgirard/rentadesk/internal/rentab"
)

type fileState struct {
	NextChangeID int64                      `json:"next_change_id"`
	Snapshots    map[string]rentab.Snapshot `json:"snapshots"`
}

// FileStore persists the snapshot map to a single JSON file after every
// mutating operation. Listener sets and the change feed stay in memory;
// only the change cursor survives a restart so watch cursors remain
// monotonic.
type FileStore struct {
	inner          *MemoryStore
	path           string
	mu             sync.Mutex
	lastPersistErr string
}

func NewFileStore(path string, cfg Config) (*FileStore, error) {
	fs := &FileStore{
		inner: NewMemoryStore(cfg),
		path:  path,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileStore) stateSnapshot() fileState {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()

	state := fileState{
		NextChangeID: f.inner.nextChangeID,
		Snapshots:    map[string]rentab.Snapshot{},
	}
	for id, snap := range f.inner.snapshots {
		state.Snapshots[id] = cloneSnapshot(*snap)
	}
	return state
}

func (f *FileStore) applyState(state fileState) {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()

	f.inner.nextChangeID = state.NextChangeID
	f.inner.snapshots = map[string]*rentab.Snapshot{}
	for id, snap := range state.Snapshots {
		cp := cloneSnapshot(snap)
		f.inner.snapshots[id] = &cp
	}
}

func (f *FileStore) persist() error {
	if f.path == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.stateSnapshot()
	blob, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		f.lastPersistErr = err.Error()
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.lastPersistErr = err.Error()
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		f.lastPersistErr = err.Error()
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		f.lastPersistErr = err.Error()
		return err
	}
	f.lastPersistErr = ""
	return nil
}

func (f *FileStore) load() error {
	if f.path == "" {
		return nil
	}
	blob, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var state fileState
	if err := json.Unmarshal(blob, &state); err != nil {
		return err
	}
	f.applyState(state)
	return nil
}

func (f *FileStore) Read(dealID string) (*rentab.Snapshot, error) {
	return f.inner.Read(dealID)
}

func (f *FileStore) Write(dealID string, snap rentab.Snapshot) (*rentab.Snapshot, error) {
	out, err := f.inner.Write(dealID, snap)
	if err == nil {
		if perr := f.persist(); perr != nil {
			return nil, NewPersistError(perr)
		}
	}
	return out, err
}

func (f *FileStore) Patch(dealID string, patch Patch) (*rentab.Snapshot, error) {
	out, err := f.inner.Patch(dealID, patch)
	if err == nil && out != nil {
		if perr := f.persist(); perr != nil {
			return nil, NewPersistError(perr)
		}
	}
	return out, err
}

func (f *FileStore) Clear(dealID string) error {
	err := f.inner.Clear(dealID)
	if err == nil {
		if perr := f.persist(); perr != nil {
			return NewPersistError(perr)
		}
	}
	return err
}

func (f *FileStore) Subscribe(dealID string, fn Listener) (func(), error) {
	return f.inner.Subscribe(dealID, fn)
}

func (f *FileStore) WatchSince(afterID int64, dealID string, wait time.Duration) ([]ChangeEvent, int64) {
	return f.inner.WatchSince(afterID, dealID, wait)
}

func (f *FileStore) Health() map[string]any {
	f.mu.Lock()
	persistErr := f.lastPersistErr
	f.mu.Unlock()

	out := f.inner.Health()
	out["backend"] = "file"
	out["path"] = f.path
	if persistErr != "" {
		out["status"] = "degraded"
		out["persist_error"] = persistErr
	}
	return out
}

func (f *FileStore) Close() error { return nil }
