package store

import (
	"sync/atomic"
	"time"

	"github.com/rickgao/coinstream/internal/model"
)

// Reader is the read-only view of the store handed to every component other
// than the refresh orchestrator.
type Reader interface {
	// Current returns the shared snapshot. Callers must not modify it.
	Current() *model.Snapshot

	// Assets returns a copy of the current asset list.
	Assets() []model.AssetRecord

	// LastUpdated returns the last refresh time, nil if never refreshed.
	LastUpdated() *time.Time
}

// Store is the canonical asset snapshot.
type Store struct {
	current atomic.Pointer[model.Snapshot]
}

var _ Reader = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.current.Store(&model.Snapshot{})
	return s
}

// Current returns the shared snapshot.
func (s *Store) Current() *model.Snapshot {
	return s.current.Load()
}

// Assets returns a copy of the current asset list.
func (s *Store) Assets() []model.AssetRecord {
	return s.current.Load().CopyAssets()
}

// LastUpdated returns the last refresh time.
func (s *Store) LastUpdated() *time.Time {
	return s.current.Load().LastUpdated
}

// Len returns the number of assets currently held.
func (s *Store) Len() int {
	return s.current.Load().Len()
}

// Install replaces the asset set wholesale and stamps it with at.
// The slice is copied; the caller may reuse it.
func (s *Store) Install(assets []model.AssetRecord, at time.Time) *model.Snapshot {
	cp := make([]model.AssetRecord, len(assets))
	copy(cp, assets)

	ts := at.UTC()
	snap := &model.Snapshot{Assets: cp, LastUpdated: &ts}
	s.current.Store(snap)
	return snap
}

// Restore replaces the snapshot with one loaded from persistence.
// Duplicate ids are dropped, first occurrence wins.
func (s *Store) Restore(snap model.Snapshot) {
	seen := make(map[string]struct{}, len(snap.Assets))
	assets := make([]model.AssetRecord, 0, len(snap.Assets))
	for _, a := range snap.Assets {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		assets = append(assets, a)
	}

	restored := &model.Snapshot{Assets: assets}
	if snap.LastUpdated != nil {
		ts := snap.LastUpdated.UTC()
		restored.LastUpdated = &ts
	}
	s.current.Store(restored)
}
