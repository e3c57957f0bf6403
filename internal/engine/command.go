package engine

import (
	"context"
	"time"

	"github.com/forumflow-dev/forumflow/internal/domain"
	"github.com/forumflow-dev/forumflow/internal/store"
	"github.com/forumflow-dev/forumflow/internal/validation"
)

type Kind string

const (
	KindCreateThread Kind = "create_thread"
	KindEditThread   Kind = "edit_thread"
	KindDeleteThread Kind = "delete_thread"
	KindTogglePin    Kind = "toggle_pin"
	KindToggleLock   Kind = "toggle_lock"
	KindCreatePost   Kind = "create_post"
	KindEditPost     Kind = "edit_post"
	KindDeletePost   Kind = "delete_post"
)

// remoteResult carries whatever entity the server returned on success.
// Toggle and delete endpoints may return nothing.
type remoteResult struct {
	thread *domain.Thread
	post   *domain.Post
}

// Command is one logical mutation. Every mutation path in the client goes
// through this protocol, so snapshot/apply/settle cannot be skipped or
// hand-rolled per screen.
//
// Stage runs under the store lock: it captures the rollback snapshot and
// applies the tentative change in one atomic step. Call is the only
// suspending phase. Reconcile also runs under the store lock and adopts the
// server's copy (or confirms the optimistic value when there is no body).
type Command interface {
	Kind() Kind
	// Key identifies the affected entity for the single-flight guard.
	Key() string
	Validate(rules validation.Rules) error
	Stage(tx *store.Tx, now time.Time) (*Snapshot, error)
	Call(ctx context.Context, rc Remote) (remoteResult, error)
	Reconcile(tx *store.Tx, res remoteResult)
}

// Result is the committed entity handed back to the caller after a
// successful settle.
type Result struct {
	Kind   Kind
	Thread *domain.Thread
	Post   *domain.Post
}
