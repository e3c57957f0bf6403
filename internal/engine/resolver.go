package engine

import (
	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
	"github.com/forumflow-dev/forumflow/internal/store"
)

// resolver decides what happens to local state once the remote outcome is
// known: adopt the server entity, confirm the optimistic value, or restore
// the snapshot. It runs under the store lock.
type resolver struct{}

// resolve returns the error the caller should see. On success it is nil; on
// remote failure it is callErr, observable only after the rollback has
// already restored consistent state; when the view moved on mid-flight it is
// a StaleEntityError and local state is left untouched.
func (resolver) resolve(tx *store.Tx, cmd Command, snap *Snapshot, res remoteResult, callErr error) error {
	if tx.Generation() != snap.generation {
		// The view this mutation was staged against is gone (thread deleted,
		// page replaced). Neither rollback nor reconciliation applies.
		return &internal_errors.StaleEntityError{Key: cmd.Key()}
	}
	if callErr != nil {
		snap.Restore(tx.State)
		return callErr
	}
	cmd.Reconcile(tx, res)
	return nil
}
