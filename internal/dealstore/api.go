package dealstore

import (
	"time"

	"github.com/mgirard/rentadesk/internal/rentab"
)

// Listener receives the new snapshot after a write or patch, and nil after
// a clear.
type Listener func(snap *rentab.Snapshot)

type ChangeKind string

const (
	ChangeWrite ChangeKind = "write"
	ChangePatch ChangeKind = "patch"
	ChangeClear ChangeKind = "clear"
)

// ChangeEvent is one entry of the store's change feed. Clients that cannot
// hold an in-process subscription (other tabs, other processes) poll the
// feed with WatchSince instead.
type ChangeEvent struct {
	ID       int64            `json:"id"`
	DealID   string           `json:"deal_id"`
	Kind     ChangeKind       `json:"kind"`
	At       time.Time        `json:"at"`
	Snapshot *rentab.Snapshot `json:"snapshot,omitempty"`
}

// Patch is a partial snapshot: nil sections are preserved from the stored
// snapshot. Patching requires an existing base; there is no upsert.
type Patch struct {
	Input       *rentab.Input       `json:"input,omitempty"`
	Scenarios   *rentab.Scenarios   `json:"scenarios,omitempty"`
	StressTests *rentab.StressTests `json:"stressTests,omitempty"`
	SmartScore  *rentab.Score       `json:"smartScore,omitempty"`
}

// Store is the persistence/notification port of the engine. The in-memory
// implementation is canonical; file, SQLite and Redis backends wrap it with
// write-through persistence.
type Store interface {
	Read(dealID string) (*rentab.Snapshot, error)
	Write(dealID string, snap rentab.Snapshot) (*rentab.Snapshot, error)
	Patch(dealID string, patch Patch) (*rentab.Snapshot, error)
	Clear(dealID string) error
	Subscribe(dealID string, fn Listener) (func(), error)
	WatchSince(afterID int64, dealID string, wait time.Duration) ([]ChangeEvent, int64)
	Health() map[string]any
	Close() error
}
