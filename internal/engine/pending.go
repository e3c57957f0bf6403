package engine

import (
	"sync"
	"time"

	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
)

type Status string

const (
	StatusInFlight   Status = "in_flight"
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
)

// PendingMutation is the transient record of one in-flight command. Owned by
// the executor; dropped from the registry on settle.
type PendingMutation struct {
	Kind      Kind
	Key       string
	Status    Status
	StartedAt time.Time

	snapshot *Snapshot
}

// registry enforces the single-flight rule: at most one pending mutation per
// entity key. A second command for the same key is rejected, never queued
// behind the first or double-applied.
type registry struct {
	mu       sync.Mutex
	inflight map[string]*PendingMutation
}

func newRegistry() *registry {
	return &registry{inflight: make(map[string]*PendingMutation)}
}

func (r *registry) acquire(kind Kind, key string, now time.Time) (*PendingMutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.inflight[key]; exists {
		return nil, &internal_errors.BusyError{Key: key}
	}
	pm := &PendingMutation{Kind: kind, Key: key, Status: StatusInFlight, StartedAt: now}
	r.inflight[key] = pm
	return pm, nil
}

func (r *registry) release(pm *PendingMutation, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pm.Status = status
	pm.snapshot = nil
	delete(r.inflight, pm.Key)
}

func (r *registry) busy(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.inflight[key]
	return exists
}
