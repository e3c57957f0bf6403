package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
	"github.com/forumflow-dev/forumflow/internal/metrics"
	"github.com/forumflow-dev/forumflow/internal/validation"
)

type Verb string

const (
	VerbPin    Verb = "pin"
	VerbLock   Verb = "lock"
	VerbDelete Verb = "delete"
)

type BulkItemError struct {
	Id  domain.ThreadId
	Err error
}

// BulkResult reports per-item outcomes. Failed ids stay selected on the
// moderation screen so the operator can inspect and retry them.
type BulkResult struct {
	Succeeded []domain.ThreadId
	Failed    []BulkItemError
}

// BulkCoordinator applies a moderation verb to a set of threads as
// independent executor invocations: one thread's failure never aborts the
// others, and a thread already mid-mutation from an individual action is
// reported busy instead of double-applied.
type BulkCoordinator struct {
	exec *Executor
}

func NewBulkCoordinator(exec *Executor) *BulkCoordinator {
	return &BulkCoordinator{exec: exec}
}

func commandForVerb(verb Verb, id domain.ThreadId) (Command, error) {
	pinned := true
	locked := true
	switch verb {
	case VerbPin:
		return NewTogglePin(id, &pinned), nil
	case VerbLock:
		return NewToggleLock(id, &locked), nil
	case VerbDelete:
		return NewDeleteThread(id), nil
	default:
		return nil, &internal_errors.ValidationError{Message: fmt.Sprintf("unknown bulk verb %q", verb)}
	}
}

// Execute runs the batch. Items mutate disjoint entities, so they are not
// serialized against each other; each one still honors the per-entity
// single-flight guard. Succeeded/Failed preserve the input order.
func (bc *BulkCoordinator) Execute(ctx context.Context, ids []domain.ThreadId, verb Verb) BulkResult {
	outcomes := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id domain.ThreadId) {
			defer wg.Done()
			cmd, err := commandForVerb(verb, id)
			if err == nil {
				_, err = bc.exec.Execute(ctx, cmd)
			}
			outcomes[i] = err
		}(i, id)
	}
	wg.Wait()

	var result BulkResult
	for i, id := range ids {
		if outcomes[i] == nil {
			result.Succeeded = append(result.Succeeded, id)
			metrics.ObserveBulkItem(string(verb), "succeeded")
		} else {
			result.Failed = append(result.Failed, BulkItemError{Id: id, Err: outcomes[i]})
			metrics.ObserveBulkItem(string(verb), "failed")
		}
	}
	return result
}

// ExecuteAtomic pushes the whole batch through the server's bulk endpoint in
// one all-or-nothing call. Local state is not touched optimistically; callers
// refetch the listing afterwards for the authoritative view.
func (bc *BulkCoordinator) ExecuteAtomic(ctx context.Context, ids []domain.ThreadId, verb Verb) error {
	req := api.BulkThreadUpdateRequest{Ids: ids}
	pinned := true
	locked := true
	switch verb {
	case VerbPin:
		req.IsPinned = &pinned
	case VerbLock:
		req.IsLocked = &locked
	case VerbDelete:
		req.Delete = true
	default:
		return &internal_errors.ValidationError{Message: fmt.Sprintf("unknown bulk verb %q", verb)}
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	return bc.exec.remote.BulkUpdateThreads(ctx, req)
}
