package dealstore

import (
	"strings"
	"sync"
	"time"

	"github.com/mgirard/rentadesk/internal/rentab"
)

const DefaultKeyPrefix = "rentab:snapshot:"

type Config struct {
	// Clock is injectable for tests; default time.Now. Stamps are UTC.
	Clock func() time.Time
	// KeyPrefix namespaces persisted records (<prefix><dealID>).
	KeyPrefix string
	// MaxChangeEvents bounds the in-memory change feed.
	MaxChangeEvents int
	// WatchWaitMax caps the long-poll wait of WatchSince.
	WatchWaitMax time.Duration
}

// MemoryStore holds the canonical snapshot-store semantics: one snapshot
// per deal id, listener sets per deal id, and a bounded change feed with
// monotonic ids. Every persistent backend embeds one of these.
type MemoryStore struct {
	mu sync.Mutex

	cfg Config

	snapshots map[string]*rentab.Snapshot

	listeners      map[string]map[int64]Listener
	nextListenerID int64

	changes      []ChangeEvent
	nextChangeID int64
}

func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.MaxChangeEvents <= 0 {
		cfg.MaxChangeEvents = 10000
	}
	if cfg.WatchWaitMax <= 0 {
		cfg.WatchWaitMax = 30 * time.Second
	}
	return &MemoryStore{
		cfg:       cfg,
		snapshots: map[string]*rentab.Snapshot{},
		listeners: map[string]map[int64]Listener{},
	}
}

func (s *MemoryStore) now() time.Time {
	return s.cfg.Clock().UTC()
}

// Key returns the persisted-record key for a deal id.
func (s *MemoryStore) Key(dealID string) string {
	return s.cfg.KeyPrefix + dealID
}

func (s *MemoryStore) Read(dealID string) (*rentab.Snapshot, error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return nil, newError(CodeValidation, "deal id is required", false)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[dealID]
	if !ok {
		return nil, nil
	}
	cp := cloneSnapshot(*snap)
	return &cp, nil
}

func (s *MemoryStore) Write(dealID string, snap rentab.Snapshot) (*rentab.Snapshot, error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return nil, newError(CodeValidation, "deal id is required", false)
	}
	now := s.now()

	s.mu.Lock()
	stored := cloneSnapshot(snap)
	stored.UpdatedAt = now
	s.snapshots[dealID] = &stored
	out := cloneSnapshot(stored)
	s.publishLocked(ChangeWrite, dealID, &out, now)
	fns := s.listenersForLocked(dealID)
	s.mu.Unlock()

	notify(fns, &out)
	return &out, nil
}

// Patch merges a partial snapshot into the existing one. Patching a deal
// with no snapshot is a no-op returning nil; callers must not treat that as
// an error.
func (s *MemoryStore) Patch(dealID string, patch Patch) (*rentab.Snapshot, error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return nil, newError(CodeValidation, "deal id is required", false)
	}
	now := s.now()

	s.mu.Lock()
	existing, ok := s.snapshots[dealID]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	if patch.Input != nil {
		existing.Input = *patch.Input
	}
	if patch.Scenarios != nil {
		existing.Scenarios = cloneScenarios(*patch.Scenarios)
	}
	if patch.StressTests != nil {
		existing.StressTests = cloneStressTests(*patch.StressTests)
	}
	if patch.SmartScore != nil {
		sc := cloneScore(*patch.SmartScore)
		existing.SmartScore = &sc
	}
	existing.UpdatedAt = now
	out := cloneSnapshot(*existing)
	s.publishLocked(ChangePatch, dealID, &out, now)
	fns := s.listenersForLocked(dealID)
	s.mu.Unlock()

	notify(fns, &out)
	return &out, nil
}

// Clear removes the snapshot and notifies subscribers with nil. Clearing an
// absent deal is a no-op.
func (s *MemoryStore) Clear(dealID string) error {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return newError(CodeValidation, "deal id is required", false)
	}
	now := s.now()

	s.mu.Lock()
	if _, ok := s.snapshots[dealID]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.snapshots, dealID)
	s.publishLocked(ChangeClear, dealID, nil, now)
	fns := s.listenersForLocked(dealID)
	s.mu.Unlock()

	notify(fns, nil)
	return nil
}

// Subscribe registers a listener for one deal id and returns its
// unsubscribe function. When the last listener for a deal unsubscribes the
// listener set is freed.
func (s *MemoryStore) Subscribe(dealID string, fn Listener) (func(), error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return nil, newError(CodeValidation, "deal id is required", false)
	}
	if fn == nil {
		return nil, newError(CodeValidation, "listener is required", false)
	}

	s.mu.Lock()
	s.nextListenerID++
	id := s.nextListenerID
	set, ok := s.listeners[dealID]
	if !ok {
		set = map[int64]Listener{}
		s.listeners[dealID] = set
	}
	set[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.listeners[dealID]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(s.listeners, dealID)
				}
			}
		})
	}, nil
}

// WatchSince returns change events with id > afterID, optionally filtered
// to one deal, long-polling up to wait. The returned cursor is the id of
// the last event seen, afterID when nothing matched.
func (s *MemoryStore) WatchSince(afterID int64, dealID string, wait time.Duration) ([]ChangeEvent, int64) {
	if wait < 0 {
		wait = 0
	}
	if wait > s.cfg.WatchWaitMax {
		wait = s.cfg.WatchWaitMax
	}
	deadline := s.now().Add(wait)

	for {
		s.mu.Lock()
		out := []ChangeEvent{}
		last := afterID
		for _, evt := range s.changes {
			if evt.ID <= afterID {
				continue
			}
			if dealID != "" && evt.DealID != dealID {
				continue
			}
			out = append(out, evt)
			last = evt.ID
		}
		s.mu.Unlock()

		if len(out) > 0 || wait == 0 || s.now().After(deadline) {
			return out, last
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func (s *MemoryStore) Health() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribed := 0
	for _, set := range s.listeners {
		subscribed += len(set)
	}
	return map[string]any{
		"status":        "ok",
		"backend":       "memory",
		"snapshots":     len(s.snapshots),
		"listeners":     subscribed,
		"change_events": len(s.changes),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) publishLocked(kind ChangeKind, dealID string, snap *rentab.Snapshot, at time.Time) {
	s.nextChangeID++
	s.changes = append(s.changes, ChangeEvent{
		ID:       s.nextChangeID,
		DealID:   dealID,
		Kind:     kind,
		At:       at,
		Snapshot: snap,
	})
	if max := s.cfg.MaxChangeEvents; max > 0 && len(s.changes) > max {
		drop := len(s.changes) - max
		s.changes = append([]ChangeEvent{}, s.changes[drop:]...)
	}
}

func (s *MemoryStore) listenersForLocked(dealID string) []Listener {
	set := s.listeners[dealID]
	if len(set) == 0 {
		return nil
	}
	fns := make([]Listener, 0, len(set))
	for _, fn := range set {
		fns = append(fns, fn)
	}
	return fns
}

// notify runs outside the store lock so a listener may call back into the
// store.
func notify(fns []Listener, snap *rentab.Snapshot) {
	for _, fn := range fns {
		var cp *rentab.Snapshot
		if snap != nil {
			c := cloneSnapshot(*snap)
			cp = &c
		}
		fn(cp)
	}
}

func cloneSnapshot(s rentab.Snapshot) rentab.Snapshot {
	out := s
	out.Scenarios = cloneScenarios(s.Scenarios)
	out.StressTests = cloneStressTests(s.StressTests)
	if s.SmartScore != nil {
		sc := cloneScore(*s.SmartScore)
		out.SmartScore = &sc
	}
	return out
}

func cloneScenarios(sc rentab.Scenarios) rentab.Scenarios {
	return rentab.Scenarios{
		Base:        cloneResult(sc.Base),
		Optimistic:  cloneResult(sc.Optimistic),
		Pessimistic: cloneResult(sc.Pessimistic),
	}
}

func cloneStressTests(st rentab.StressTests) rentab.StressTests {
	return rentab.StressTests{
		ResaleMinus5: cloneResult(st.ResaleMinus5),
		WorksPlus10:  cloneResult(st.WorksPlus10),
	}
}

func cloneResult(r rentab.Result) rentab.Result {
	out := r
	if r.Reasons != nil {
		out.Reasons = append([]string{}, r.Reasons...)
	}
	return out
}

func cloneScore(s rentab.Score) rentab.Score {
	out := s
	if s.Components != nil {
		out.Components = make(map[string]float64, len(s.Components))
		for k, v := range s.Components {
			out.Components[k] = v
		}
	}
	return out
}
