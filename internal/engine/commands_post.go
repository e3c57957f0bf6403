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

// CreatePost inserts a tentative post with a locally generated temp id,
// bumps the thread/category counters, and swaps in the server's copy once it
// commits.
type CreatePost struct {
	ThreadId domain.ThreadId
	Content  string

	tempId domain.TempId
}

func NewCreatePost(threadId domain.ThreadId, content string) *CreatePost {
	return &CreatePost{ThreadId: threadId, Content: content, tempId: uuid.NewString()}
}

func (c *CreatePost) Kind() Kind { return KindCreatePost }

func (c *CreatePost) Key() string { return "post/tmp/" + c.tempId }

func (c *CreatePost) Validate(rules validation.Rules) error {
	if err := rules.Content(c.Content); err != nil {
		return err
	}
	return validation.Struct(api.CreatePostRequest{Content: c.Content})
}

func (c *CreatePost) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	s := tx.State
	if s.Thread == nil || s.Thread.Id != c.ThreadId {
		return nil, &internal_errors.StaleEntityError{Key: c.Key()}
	}
	if s.Thread.IsLocked {
		return nil, &internal_errors.ValidationError{Message: "thread is locked"}
	}

	prevThreadActivity := s.Thread.LastActivity
	var prevRowActivity time.Time
	if idx := s.ThreadIndex(c.ThreadId); idx >= 0 {
		prevRowActivity = s.Threads[idx].LastActivity
	}
	prevCategoryActivity := s.Category.LastActivity

	s.Posts = append(s.Posts, domain.Post{
		TempId:    c.tempId,
		Pending:   true,
		ThreadId:  c.ThreadId,
		Content:   c.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.Thread.ReplyCount++
	s.Thread.LastActivity = now
	if idx := s.ThreadIndex(c.ThreadId); idx >= 0 {
		s.Threads[idx].ReplyCount++
		s.Threads[idx].LastActivity = now
	}
	s.Category.PostCount++
	s.Category.LastActivity = now
	s.PostsMeta = s.PostsMeta.Adjust(+1)

	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		if idx := s.PendingPostIndex(c.tempId); idx >= 0 {
			s.Posts = append(s.Posts[:idx], s.Posts[idx+1:]...)
			s.PostsMeta = s.PostsMeta.Adjust(-1)
		}
		if s.Thread != nil && s.Thread.Id == c.ThreadId {
			if s.Thread.ReplyCount > 0 {
				s.Thread.ReplyCount--
			}
			restoreTime(&s.Thread.LastActivity, now, prevThreadActivity)
		}
		if idx := s.ThreadIndex(c.ThreadId); idx >= 0 {
			if s.Threads[idx].ReplyCount > 0 {
				s.Threads[idx].ReplyCount--
			}
			restoreTime(&s.Threads[idx].LastActivity, now, prevRowActivity)
		}
		if s.Category.PostCount > 0 {
			s.Category.PostCount--
		}
		restoreTime(&s.Category.LastActivity, now, prevCategoryActivity)
	}
	return snap, nil
}

func (c *CreatePost) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	post, err := rc.CreatePost(ctx, c.ThreadId, api.CreatePostRequest{Content: c.Content})
	if err != nil {
		return remoteResult{}, err
	}
	return remoteResult{post: &post}, nil
}

func (c *CreatePost) Reconcile(tx *store.Tx, res remoteResult) {
	s := tx.State
	idx := s.PendingPostIndex(c.tempId)
	if idx < 0 {
		return
	}
	if res.post == nil {
		s.Posts[idx].Pending = false
		return
	}
	// Adopt the server copy verbatim: real id, canonical timestamps, any
	// server-computed fields. The post keeps its on-page position even when
	// authoritative paging would place it elsewhere; the next explicit fetch
	// presents the canonical ordering.
	s.Posts[idx] = *res.post
}

// EditPost overwrites a post's content in place and marks it edited.
type EditPost struct {
	Id      domain.PostId
	Content string
}

func NewEditPost(id domain.PostId, content string) *EditPost {
	return &EditPost{Id: id, Content: content}
}

func (c *EditPost) Kind() Kind { return KindEditPost }

func (c *EditPost) Key() string { return fmt.Sprintf("post/%d", c.Id) }

func (c *EditPost) Validate(rules validation.Rules) error {
	if err := rules.Content(c.Content); err != nil {
		return err
	}
	return validation.Struct(api.UpdatePostRequest{Content: c.Content})
}

func (c *EditPost) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	s := tx.State
	idx := s.PostIndex(c.Id)
	if idx < 0 {
		return nil, &internal_errors.StaleEntityError{Key: c.Key()}
	}

	prevContent := s.Posts[idx].Content
	prevEdited := s.Posts[idx].IsEdited
	prevUpdated := s.Posts[idx].UpdatedAt

	s.Posts[idx].Content = c.Content
	s.Posts[idx].IsEdited = true
	s.Posts[idx].UpdatedAt = now

	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		if i := s.PostIndex(c.Id); i >= 0 {
			s.Posts[i].Content = prevContent
			s.Posts[i].IsEdited = prevEdited
			s.Posts[i].UpdatedAt = prevUpdated
		}
	}
	return snap, nil
}

func (c *EditPost) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	post, err := rc.UpdatePost(ctx, c.Id, api.UpdatePostRequest{Content: c.Content})
	if err != nil {
		return remoteResult{}, err
	}
	return remoteResult{post: &post}, nil
}

func (c *EditPost) Reconcile(tx *store.Tx, res remoteResult) {
	s := tx.State
	idx := s.PostIndex(c.Id)
	if idx < 0 || res.post == nil {
		return
	}
	s.Posts[idx] = *res.post
}

// DeletePost evicts a post immediately, decrements the thread/category
// counters, and clamps the page if the listing shrank under it.
type DeletePost struct {
	Id domain.PostId
}

func NewDeletePost(id domain.PostId) *DeletePost {
	return &DeletePost{Id: id}
}

func (c *DeletePost) Kind() Kind { return KindDeletePost }

func (c *DeletePost) Key() string { return fmt.Sprintf("post/%d", c.Id) }

func (c *DeletePost) Validate(validation.Rules) error { return nil }

func (c *DeletePost) Stage(tx *store.Tx, now time.Time) (*Snapshot, error) {
	s := tx.State
	idx := s.PostIndex(c.Id)
	if idx < 0 {
		return nil, &internal_errors.StaleEntityError{Key: c.Key()}
	}

	removed := s.Posts[idx]
	removedAt := idx
	threadId := removed.ThreadId

	s.Posts = append(s.Posts[:idx], s.Posts[idx+1:]...)
	decOpenThread := s.Thread != nil && s.Thread.Id == threadId && s.Thread.ReplyCount > 0
	if decOpenThread {
		s.Thread.ReplyCount--
	}
	decRow := false
	if rowIdx := s.ThreadIndex(threadId); rowIdx >= 0 && s.Threads[rowIdx].ReplyCount > 0 {
		s.Threads[rowIdx].ReplyCount--
		decRow = true
	}
	decCategory := s.Category.PostCount > 0
	if decCategory {
		s.Category.PostCount--
	}
	s.PostsMeta = s.PostsMeta.Adjust(-1)

	snap := &Snapshot{generation: tx.Generation()}
	snap.restore = func(s *store.State) {
		at := removedAt
		if at > len(s.Posts) {
			at = len(s.Posts)
		}
		s.Posts = append(s.Posts[:at], append([]domain.Post{removed}, s.Posts[at:]...)...)
		s.PostsMeta = s.PostsMeta.Adjust(+1)
		if decOpenThread && s.Thread != nil && s.Thread.Id == threadId {
			s.Thread.ReplyCount++
		}
		if rowIdx := s.ThreadIndex(threadId); decRow && rowIdx >= 0 {
			s.Threads[rowIdx].ReplyCount++
		}
		if decCategory {
			s.Category.PostCount++
		}
	}
	return snap, nil
}

func (c *DeletePost) Call(ctx context.Context, rc Remote) (remoteResult, error) {
	return remoteResult{}, rc.DeletePost(ctx, c.Id)
}

func (c *DeletePost) Reconcile(tx *store.Tx, res remoteResult) {
	// No body on delete; the optimistic eviction already matches the server.
}
