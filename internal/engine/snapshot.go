package engine

import (
	"time"

	"github.com/forumflow-dev/forumflow/internal/store"
)

// Snapshot is the rollback target for one command. It does not hold a copy of
// whole slices: each command builds a restore step that puts back exactly the
// fields it wrote (pre-images for overwrites, inverse deltas for counters and
// pagination metas), so a failing mutation can never wipe out a sibling
// mutation that committed while it was in flight.
//
// The generation is recorded after the tentative apply. If the store's
// generation has moved by settle time, the view this snapshot belongs to is
// gone and Restore must not run.
type Snapshot struct {
	generation uint64
	restore    func(s *store.State)
}

// Restore undoes the tentative apply, field-for-field.
func (sn *Snapshot) Restore(s *store.State) {
	if sn.restore != nil {
		sn.restore(s)
	}
}

// restoreTime puts back a timestamp pre-image, but only when the field still
// holds the value this command wrote. A sibling mutation that bumped it since
// owns the newer value.
func restoreTime(field *time.Time, wrote, prev time.Time) {
	if field.Equal(wrote) {
		*field = prev
	}
}
