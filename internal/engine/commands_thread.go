package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
	"github.com/forumflow-dev/forumflow/internal/store"
	"github.com/forumflow-dev/forumflow/internal/validation"
)

// CreateThread appends a tentative listing row with a temp id and bumps the
// category thread count.
type CreateThread struct {
	CategorySlug domain.CategorySlug
	Title        string
	Content      string

	tempId domain.TempId
}

func NewCreateThread(categorySlug domain.CategorySlug, title, content string) *CreateThread {
	return &CreateThread{CategorySlug: categorySlug, Title: title, Content: content, tempId: uuid.NewString()}
}

func (c *CreateThread) Kind() Kind { return KindCreateThread }

func (c *CreateThread) Key() string { return "thread/tmp/" + c.tempId }

func (c *CreateThread) Validate(rules validation.Rules) error {
	if err := rules.Title(c.Title); err != nil {
		return err
	}
	if err := rules.Content(c.Content); err != nil {
		return err
	}
	return validation.Struct(api.CreateThreadRequest{
		CategorySlug: c.CategorySlug, Title: c.Title, Content: c.Content,
	})
}

func (c *CreateThread) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	s := tx.State
	if s.Category.Slug != "" && s.Category.Slug != c.CategorySlug {
		return nil, &internal_errors.StaleEntityError{Key: c.Key()}
	}

	prevCategoryActivity := s.Category.LastActivity

	s.Threads = append(s.Threads, domain.Thread{
		TempId:       c.tempId,
		Pending:      true,
		CategorySlug: c.CategorySlug,
		Title:        c.Title,
		Content:      c.Content,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
	})
	s.Category.ThreadCount++
	s.Category.LastActivity = now
	s.ThreadsMeta = s.ThreadsMeta.Adjust(+1)

	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		if idx := s.PendingThreadIndex(c.tempId); idx >= 0 {
			s.Threads = append(s.Threads[:idx], s.Threads[idx+1:]...)
			s.ThreadsMeta = s.ThreadsMeta.Adjust(-1)
		}
		if s.Category.ThreadCount > 0 {
			s.Category.ThreadCount--
		}
		restoreTime(&s.Category.LastActivity, now, prevCategoryActivity)
	}
	return snap, nil
}

func (c *CreateThread) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	thread, err := rc.CreateThread(ctx, api.CreateThreadRequest{
		CategorySlug: c.CategorySlug, Title: c.Title, Content: c.Content,
	})
	if err != nil {
		return remoteResult{}, err
	}
	return remoteResult{thread: &thread}, nil
}

func (c *CreateThread) Reconcile(tx *store.Tx, res remoteResult) {
	s := tx.State
	idx := s.PendingThreadIndex(c.tempId)
	if idx < 0 {
		return
	}
	if res.thread == nil {
		s.Threads[idx].Pending = false
		return
	}
	s.Threads[idx] = *res.thread
}

// EditThread patches title and/or content of a thread, wherever the thread is
// visible (open view, listing row, or both).
type EditThread struct {
	Id      domain.ThreadId
	Title   *string
	Content *string
}

func NewEditThread(id domain.ThreadId, title, content *string) *EditThread {
	return &EditThread{Id: id, Title: title, Content: content}
}

func (c *EditThread) Kind() Kind { return KindEditThread }

func (c *EditThread) Key() string { return fmt.Sprintf("thread/%d", c.Id) }

func (c *EditThread) Validate(rules validation.Rules) error {
	if c.Title == nil && c.Content == nil {
		return &internal_errors.ValidationError{Message: "nothing to update"}
	}
	if c.Title != nil {
		if err := rules.Title(*c.Title); err != nil {
			return err
		}
	}
	if c.Content != nil {
		if err := rules.Content(*c.Content); err != nil {
			return err
		}
	}
	return nil
}

func (c *EditThread) apply(t *domain.Thread, now time.Time) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Content != nil {
		t.Content = *c.Content
	}
	t.UpdatedAt = now
}

func (c *EditThread) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	s := tx.State
	rowIdx := s.ThreadIndex(c.Id)
	open := s.Thread != nil && s.Thread.Id == c.Id
	if rowIdx < 0 && !open {
		return nil, &internal_errors.StaleEntityError{Key: c.Key()}
	}

	var prevOpen, prevRow editedFields
	if open {
		prevOpen = capturedEdit(s.Thread)
		c.apply(s.Thread, now)
	}
	if rowIdx >= 0 {
		prevRow = capturedEdit(&s.Threads[rowIdx])
		c.apply(&s.Threads[rowIdx], now)
	}

	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		if open && s.Thread != nil && s.Thread.Id == c.Id {
			prevOpen.put(s.Thread)
		}
		if i := s.ThreadIndex(c.Id); rowIdx >= 0 && i >= 0 {
			prevRow.put(&s.Threads[i])
		}
	}
	return snap, nil
}

// editedFields is the pre-image of exactly the fields an edit overwrites, so
// a rollback leaves every other field on the thread alone.
type editedFields struct {
	title   string
	content string
	updated time.Time
}

func capturedEdit(t *domain.Thread) editedFields {
	return editedFields{title: t.Title, content: t.Content, updated: t.UpdatedAt}
}

func (f editedFields) put(t *domain.Thread) {
	t.Title = f.title
	t.Content = f.content
	t.UpdatedAt = f.updated
}

func (c *EditThread) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	thread, err := rc.UpdateThread(ctx, c.Id, api.UpdateThreadRequest{Title: c.Title, Content: c.Content})
	if err != nil {
		return remoteResult{}, err
	}
	return remoteResult{thread: &thread}, nil
}

func (c *EditThread) Reconcile(tx *store.Tx, res remoteResult) {
	adoptThread(tx.State, c.Id, res.thread)
}

// DeleteThread evicts the thread (listing row and, when open, the whole post
// page) and invalidates any mutation still in flight for its posts.
type DeleteThread struct {
	Id domain.ThreadId
}

func NewDeleteThread(id domain.ThreadId) *DeleteThread {
	return &DeleteThread{Id: id}
}

func (c *DeleteThread) Kind() Kind { return KindDeleteThread }

func (c *DeleteThread) Key() string { return fmt.Sprintf("thread/%d", c.Id) }

func (c *DeleteThread) Validate(validation.Rules) error { return nil }

func (c *DeleteThread) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	s := tx.State
	rowIdx := s.ThreadIndex(c.Id)
	open := s.Thread != nil && s.Thread.Id == c.Id
	if rowIdx < 0 && !open {
		return nil, &internal_errors.StaleEntityError{Key: c.Key()}
	}

	var removedRow domain.Thread
	removedAt := rowIdx
	replyCount := 0
	if rowIdx >= 0 {
		removedRow = s.Threads[rowIdx]
		replyCount = removedRow.ReplyCount
		s.Threads = append(s.Threads[:rowIdx], s.Threads[rowIdx+1:]...)
		s.ThreadsMeta = s.ThreadsMeta.Adjust(-1)
	}
	var evictedThread *domain.Thread
	var evictedPosts []domain.Post
	var evictedMeta domain.PaginationMeta
	if open {
		if replyCount == 0 {
			replyCount = s.Thread.ReplyCount
		}
		// The whole open view belongs to this thread, so evicting and, on
		// rollback, reinstating it wholesale cannot touch another entity.
		evictedThread = s.Thread
		evictedPosts = s.Posts
		evictedMeta = s.PostsMeta
		s.Thread = nil
		s.Posts = nil
		s.PostsMeta = domain.Recompute(0, s.PostsMeta.Limit, 1)
		// Settles of post mutations still in flight for this thread must
		// become no-ops.
		tx.Invalidate()
	}
	decThreadCount := s.Category.ThreadCount > 0
	if decThreadCount {
		s.Category.ThreadCount--
	}
	postDelta := replyCount
	if postDelta > s.Category.PostCount {
		postDelta = s.Category.PostCount
	}
	s.Category.PostCount -= postDelta

	// Recorded after Invalidate so this command's own settle still matches.
	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		if removedAt >= 0 {
			at := removedAt
			if at > len(s.Threads) {
				at = len(s.Threads)
			}
			s.Threads = append(s.Threads[:at], append([]domain.Thread{removedRow}, s.Threads[at:]...)...)
			s.ThreadsMeta = s.ThreadsMeta.Adjust(+1)
		}
		if open {
			s.Thread = evictedThread
			s.Posts = evictedPosts
			s.PostsMeta = evictedMeta
		}
		if decThreadCount {
			s.Category.ThreadCount++
		}
		s.Category.PostCount += postDelta
	}
	return snap, nil
}

func (c *DeleteThread) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	return remoteResult{}, rc.DeleteThread(ctx, c.Id)
}

func (c *DeleteThread) Reconcile(tx *store.Tx, res remoteResult) {
	// No body on delete; cascade removal of posts is the server's job and the
	// local eviction already happened at stage time.
}

// TogglePin flips (or explicitly sets) the pinned flag.
type TogglePin struct {
	Id      domain.ThreadId
	Desired *bool
}

func NewTogglePin(id domain.ThreadId, desired *bool) *TogglePin {
	return &TogglePin{Id: id, Desired: desired}
}

func (c *TogglePin) Kind() Kind { return KindTogglePin }

func (c *TogglePin) Key() string { return fmt.Sprintf("thread/%d", c.Id) }

func (c *TogglePin) Validate(validation.Rules) error { return nil }

func (c *TogglePin) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	return stageToggle(tx, c.Key(), c.Id, func(t *domain.Thread) {
		if c.Desired != nil {
			t.IsPinned = *c.Desired
		} else {
			t.IsPinned = !t.IsPinned
		}
		t.UpdatedAt = now
	})
}

func (c *TogglePin) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	thread, err := rc.TogglePin(ctx, c.Id, c.Desired)
	if err != nil {
		return remoteResult{}, err
	}
	return remoteResult{thread: &thread}, nil
}

func (c *TogglePin) Reconcile(tx *store.Tx, res remoteResult) {
	adoptThread(tx.State, c.Id, res.thread)
}

// ToggleLock flips (or explicitly sets) the locked flag.
type ToggleLock struct {
	Id      domain.ThreadId
	Desired *bool
}

func NewToggleLock(id domain.ThreadId, desired *bool) *ToggleLock {
	return &ToggleLock{Id: id, Desired: desired}
}

func (c *ToggleLock) Kind() Kind { return KindToggleLock }

func (c *ToggleLock) Key() string { return fmt.Sprintf("thread/%d", c.Id) }

func (c *ToggleLock) Validate(validation.Rules) error { return nil }

func (c *ToggleLock) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	return stageToggle(tx, c.Key(), c.Id, func(t *domain.Thread) {
		if c.Desired != nil {
			t.IsLocked = *c.Desired
		} else {
			t.IsLocked = !t.IsLocked
		}
		t.UpdatedAt = now
	})
}

func (c *ToggleLock) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	thread, err := rc.ToggleLock(ctx, c.Id, c.Desired)
	if err != nil {
		return remoteResult{}, err
	}
	return remoteResult{thread: &thread}, nil
}

func (c *ToggleLock) Reconcile(tx *store.Tx, res remoteResult) {
	adoptThread(tx.State, c.Id, res.thread)
}

// stageToggle applies an in-place flag flip wherever the thread is visible.
func stageToggle(tx *store.Tx, key string, id domain.ThreadId, flip func(*domain.Thread)) (*Snapshot, error) {
	s := tx.State
	rowIdx := s.ThreadIndex(id)
	open := s.Thread != nil && s.Thread.Id == id
	if rowIdx < 0 && !open {
		return nil, &internal_errors.StaleEntityError{Key: key}
	}

	var prevOpen, prevRow toggledFields
	if open {
		prevOpen = capturedToggle(s.Thread)
		flip(s.Thread)
	}
	if rowIdx >= 0 {
		prevRow = capturedToggle(&s.Threads[rowIdx])
		flip(&s.Threads[rowIdx])
	}

	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		if open && s.Thread != nil && s.Thread.Id == id {
			prevOpen.put(s.Thread)
		}
		if i := s.ThreadIndex(id); rowIdx >= 0 && i >= 0 {
			prevRow.put(&s.Threads[i])
		}
	}
	return snap, nil
}

// toggledFields is the pre-image of the moderation flags a toggle may flip.
// Restoring only these leaves counters bumped by other in-flight mutations
// intact.
type toggledFields struct {
	pinned  bool
	locked  bool
	updated time.Time
}

func capturedToggle(t *domain.Thread) toggledFields {
	return toggledFields{pinned: t.IsPinned, locked: t.IsLocked, updated: t.UpdatedAt}
}

func (f toggledFields) put(t *domain.Thread) {
	t.IsPinned = f.pinned
	t.IsLocked = f.locked
	t.UpdatedAt = f.updated
}

// adoptThread replaces every visible copy of the thread with the server's.
// A nil server entity means the optimistic value already stands.
func adoptThread(s *store.State, id domain.ThreadId, server *domain.Thread) {
	if server == nil {
		return
	}
	if s.Thread != nil && s.Thread.Id == id {
		thread := *server
		s.Thread = &thread
	}
	if idx := s.ThreadIndex(id); idx >= 0 {
		s.Threads[idx] = *server
	}
}
