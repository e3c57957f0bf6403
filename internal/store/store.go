// Package store holds the client's view of the forum: one category listing
// page, one open thread with a page of posts, and the category's aggregate
// counters. Mutation entry points live in the engine; everything else reads
// through deep-copied snapshots.
package store

import (
	"sync"

	"github.com/forumflow-dev/forumflow/internal/domain"
)

// State is the mutable view. Fields are exported for the engine; presentation
// code must go through Store.Snapshot instead.
type State struct {
	Category    domain.CategoryAggregate
	Threads     []domain.Thread
	ThreadsMeta domain.PaginationMeta
	Thread      *domain.Thread
	Posts       []domain.Post
	PostsMeta   domain.PaginationMeta
}

func (s *State) clone() State {
	dup := *s
	dup.Threads = domain.CloneThreads(s.Threads)
	dup.Posts = domain.ClonePosts(s.Posts)
	if s.Thread != nil {
		thread := *s.Thread
		dup.Thread = &thread
	}
	return dup
}

// PostIndex finds a committed post by server id. Returns -1 when absent.
func (s *State) PostIndex(id domain.PostId) int {
	for i := range s.Posts {
		if !s.Posts[i].Pending && s.Posts[i].Id == id {
			return i
		}
	}
	return -1
}

// PendingPostIndex finds a tentative post by temp id. Returns -1 when absent.
func (s *State) PendingPostIndex(tempId domain.TempId) int {
	for i := range s.Posts {
		if s.Posts[i].Pending && s.Posts[i].TempId == tempId {
			return i
		}
	}
	return -1
}

// ThreadIndex finds a listing row by server id. Returns -1 when absent.
func (s *State) ThreadIndex(id domain.ThreadId) int {
	for i := range s.Threads {
		if !s.Threads[i].Pending && s.Threads[i].Id == id {
			return i
		}
	}
	return -1
}

// PendingThreadIndex finds a tentative listing row by temp id.
func (s *State) PendingThreadIndex(tempId domain.TempId) int {
	for i := range s.Threads {
		if s.Threads[i].Pending && s.Threads[i].TempId == tempId {
			return i
		}
	}
	return -1
}

// Store guards State behind a mutex and a generation counter. The generation
// moves only when the view stops being the same view (a hydrate replaced it,
// or the open thread was deleted), so an in-flight settle can tell "my target
// is gone" apart from "a sibling mutation landed".
type Store struct {
	mu         sync.Mutex
	state      State
	generation uint64
}

func New() *Store {
	return &Store{}
}

// Tx is the engine's handle on locked state during Update.
type Tx struct {
	State *State
	store *Store
}

// Generation reports the view generation observed inside this Update.
func (tx *Tx) Generation() uint64 {
	return tx.store.generation
}

// Invalidate bumps the generation: every snapshot taken before this call is
// stale and must not be restored.
func (tx *Tx) Invalidate() {
	tx.store.generation++
}

// Update runs fn with the lock held. Tentative apply and settle each happen
// inside a single Update call so no reader observes a half-updated view.
func (st *Store) Update(fn func(tx *Tx)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&Tx{State: &st.state, store: st})
}

// Snapshot returns a deep copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

func (st *Store) Generation() uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.generation
}

// HydrateThreadPage replaces the open thread view with an authoritative fetch.
func (st *Store) HydrateThreadPage(thread domain.Thread, posts []domain.Post, meta domain.PaginationMeta) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.Thread = &thread
	st.state.Posts = domain.ClonePosts(posts)
	st.state.PostsMeta = meta
	st.generation++
}

// HydrateListing replaces the category listing view with an authoritative
// fetch. A nil category keeps the current aggregate.
func (st *Store) HydrateListing(category *domain.CategoryAggregate, threads []domain.Thread, meta domain.PaginationMeta) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if category != nil {
		st.state.Category = *category
	}
	st.state.Threads = domain.CloneThreads(threads)
	st.state.ThreadsMeta = meta
	st.generation++
}
