// Package engine is the mutation pipeline: every optimistic change to the
// forum view runs snapshot, tentative apply, remote call, then
// commit-or-rollback, with a single-flight guard per entity.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/forumflow-dev/forumflow/internal/domain"
	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
	"github.com/forumflow-dev/forumflow/internal/logger"
	"github.com/forumflow-dev/forumflow/internal/metrics"
	"github.com/forumflow-dev/forumflow/internal/store"
	"github.com/forumflow-dev/forumflow/internal/validation"
)

type Executor struct {
	store   *store.Store
	remote  Remote
	rules   validation.Rules
	pending *registry
	now     func() time.Time
}

func New(st *store.Store, remote Remote, rules validation.Rules) *Executor {
	return &Executor{
		store:   st,
		remote:  remote,
		rules:   rules,
		pending: newRegistry(),
		now:     time.Now,
	}
}

// Busy reports whether a mutation is in flight for the given entity key.
// Callers use it to disable controls rather than collect BusyErrors.
func (e *Executor) Busy(key string) bool {
	return e.pending.busy(key)
}

// Execute runs one command through the full pipeline. On any returned error
// local state is already consistent: validation and busy rejections never
// mutated it, remote failures had their snapshot restored, and stale settles
// left the (replaced) view alone.
func (e *Executor) Execute(ctx context.Context, cmd Command) (*Result, error) {
	kind := string(cmd.Kind())
	start := e.now()

	if err := cmd.Validate(e.rules); err != nil {
		metrics.ObserveMutation(kind, "invalid", 0)
		return nil, err
	}

	pm, err := e.pending.acquire(cmd.Kind(), cmd.Key(), start)
	if err != nil {
		metrics.ObserveMutation(kind, "rejected", 0)
		return nil, err
	}

	var snap *Snapshot
	var stageErr error
	e.store.Update(func(tx *store.Tx) {
		snap, stageErr = cmd.Stage(tx, start)
	})
	if stageErr != nil {
		e.pending.release(pm, StatusRolledBack)
		metrics.ObserveMutation(kind, "invalid", 0)
		return nil, stageErr
	}
	pm.snapshot = snap

	// The only suspension point in the pipeline.
	res, callErr := cmd.Call(ctx, e.remote)

	var settleErr error
	e.store.Update(func(tx *store.Tx) {
		settleErr = resolver{}.resolve(tx, cmd, snap, res, callErr)
	})
	elapsed := e.now().Sub(start)

	if callErr != nil {
		e.pending.release(pm, StatusRolledBack)
		metrics.ObserveMutation(kind, "rolled_back", elapsed)
		logger.Log.Warn("mutation rolled back",
			"component", "engine",
			"kind", kind,
			"key", cmd.Key(),
			"error", callErr)
		return nil, settleErr
	}

	e.pending.release(pm, StatusCommitted)
	if settleErr != nil {
		// Committed remotely, but the local view moved on before settle.
		metrics.ObserveMutation(kind, "stale", elapsed)
		return nil, settleErr
	}

	metrics.ObserveMutation(kind, "committed", elapsed)
	return &Result{Kind: cmd.Kind(), Thread: res.thread, Post: res.post}, nil
}

// LoadThread fetches a thread page and hydrates the store with the
// authoritative copy.
func (e *Executor) LoadThread(ctx context.Context, slug domain.ThreadSlug, page, limit int) (store.State, error) {
	resp, err := e.remote.GetThread(ctx, slug, page, limit)
	if err != nil {
		return store.State{}, err
	}
	e.store.HydrateThreadPage(resp.Thread, resp.Posts, resp.Pagination)
	return e.store.Snapshot(), nil
}

// LoadCategory fetches a category listing page, refreshing the aggregate
// counters when the server sends them along.
func (e *Executor) LoadCategory(ctx context.Context, categorySlug string, page, limit int, sortBy string) (store.State, error) {
	resp, err := e.remote.ListThreads(ctx, categorySlug, page, limit, sortBy)
	if err != nil {
		return store.State{}, err
	}
	e.store.HydrateListing(resp.Category, resp.Threads, resp.Pagination)
	return e.store.Snapshot(), nil
}

// IsRetryable reports whether an error category makes an immediate retry
// reasonable (transport failures, busy rejections).
func IsRetryable(err error) bool {
	var netErr *internal_errors.NetworkError
	var busyErr *internal_errors.BusyError
	return errors.As(err, &netErr) || errors.As(err, &busyErr)
}
