package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
	"github.com/forumflow-dev/forumflow/internal/store"
	"github.com/forumflow-dev/forumflow/internal/validation"
)

func newTestExecutor(remote Remote) (*Executor, *store.Store) {
	st := store.New()
	seedThreadView(st)
	return New(st, remote, validation.Default()), st
}

func TestCreatePostValidation(t *testing.T) {
	exec, st := newTestExecutor(&mockRemote{})
	before := st.Snapshot()

	// Below the minimum of 5 characters: rejected before any state change.
	_, err := exec.Execute(context.Background(), NewCreatePost(7, "abcd"))

	var validationErr *internal_errors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, before, st.Snapshot())
}

func TestCreatePostSuccess(t *testing.T) {
	remote := &mockRemote{
		CreatePostFunc: func(threadId domain.ThreadId, data api.CreatePostRequest) (domain.Post, error) {
			return domain.Post{Id: 555, ThreadId: threadId, AuthorId: 9, Content: data.Content, CreatedAt: time.Now()}, nil
		},
	}
	exec, st := newTestExecutor(remote)

	result, err := exec.Execute(context.Background(), NewCreatePost(7, "a perfectly fine reply"))
	require.NoError(t, err)
	require.NotNil(t, result.Post)
	assert.Equal(t, domain.PostId(555), result.Post.Id)

	snap := st.Snapshot()
	require.Len(t, snap.Posts, 3)
	// Tentative post replaced by the server copy: real id, no pending marker.
	assert.Equal(t, domain.PostId(555), snap.Posts[2].Id)
	assert.False(t, snap.Posts[2].Pending)
	assert.Empty(t, snap.Posts[2].TempId)

	assert.Equal(t, 3, snap.Thread.ReplyCount)
	assert.Equal(t, 3, snap.Threads[0].ReplyCount)
	assert.Equal(t, 41, snap.Category.PostCount)
	assert.Equal(t, 3, snap.PostsMeta.Total)
}

func TestCreatePostRollback(t *testing.T) {
	remote := &mockRemote{
		CreatePostFunc: func(domain.ThreadId, api.CreatePostRequest) (domain.Post, error) {
			return domain.Post{}, &internal_errors.ServerError{StatusCode: 500, Message: "boom"}
		},
	}
	exec, st := newTestExecutor(remote)
	before := st.Snapshot()

	_, err := exec.Execute(context.Background(), NewCreatePost(7, "this will not stick"))

	var serverErr *internal_errors.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, 500, serverErr.StatusCode)
	// Rollback exactness: bit-for-bit the state from before the command.
	assert.Equal(t, before, st.Snapshot())
}

func TestCreatePostOnLockedThread(t *testing.T) {
	exec, st := newTestExecutor(&mockRemote{})
	st.Update(func(tx *store.Tx) {
		tx.State.Thread.IsLocked = true
	})
	before := st.Snapshot()

	_, err := exec.Execute(context.Background(), NewCreatePost(7, "should not go through"))

	var validationErr *internal_errors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, before, st.Snapshot())
}

func TestCounterConservation(t *testing.T) {
	exec, st := newTestExecutor(&mockRemote{})
	before := st.Snapshot()

	result, err := exec.Execute(context.Background(), NewCreatePost(7, "temporary reply"))
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), NewDeletePost(result.Post.Id))
	require.NoError(t, err)

	after := st.Snapshot()
	assert.Equal(t, before.Thread.ReplyCount, after.Thread.ReplyCount)
	assert.Equal(t, before.Category.PostCount, after.Category.PostCount)
	assert.Equal(t, before.PostsMeta.Total, after.PostsMeta.Total)
	assert.Len(t, after.Posts, len(before.Posts))
}

func TestEditPostRollback(t *testing.T) {
	remote := &mockRemote{
		UpdatePostFunc: func(domain.PostId, api.UpdatePostRequest) (domain.Post, error) {
			return domain.Post{}, &internal_errors.ServerError{StatusCode: 403, Message: "not your post"}
		},
	}
	exec, st := newTestExecutor(remote)
	before := st.Snapshot()

	_, err := exec.Execute(context.Background(), NewEditPost(100, "hijacked content"))
	require.Error(t, err)
	assert.Equal(t, before, st.Snapshot())
}

func TestEditPostUnknownId(t *testing.T) {
	exec, st := newTestExecutor(&mockRemote{})
	before := st.Snapshot()

	_, err := exec.Execute(context.Background(), NewEditPost(999, "editing nothing"))

	var staleErr *internal_errors.StaleEntityError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, before, st.Snapshot())
}

func TestDeletePostClampsPage(t *testing.T) {
	st := store.New()
	st.HydrateThreadPage(
		domain.Thread{Id: 7, Slug: "long-thread", ReplyCount: 21},
		[]domain.Post{{Id: 200, ThreadId: 7, Content: "last page post"}},
		domain.Recompute(21, 5, 5),
	)
	exec := New(st, &mockRemote{}, validation.Default())

	_, err := exec.Execute(context.Background(), NewDeletePost(200))
	require.NoError(t, err)

	snap := st.Snapshot()
	assert.Equal(t, 20, snap.PostsMeta.Total)
	assert.Equal(t, 4, snap.PostsMeta.TotalPages)
	assert.Equal(t, 4, snap.PostsMeta.Page)
}

func TestDeleteThreadClampsListing(t *testing.T) {
	st := store.New()
	threads := make([]domain.Thread, 0, 1)
	threads = append(threads, domain.Thread{Id: 50, Slug: "victim", ReplyCount: 50})
	st.HydrateListing(
		&domain.CategoryAggregate{Slug: "tools", ThreadCount: 21, PostCount: 500},
		threads,
		domain.Recompute(21, 5, 5),
	)
	exec := New(st, &mockRemote{}, validation.Default())

	_, err := exec.Execute(context.Background(), NewDeleteThread(50))
	require.NoError(t, err)

	snap := st.Snapshot()
	assert.Equal(t, 20, snap.ThreadsMeta.Total)
	assert.Equal(t, 4, snap.ThreadsMeta.TotalPages)
	assert.Equal(t, 4, snap.ThreadsMeta.Page)
	assert.Equal(t, 20, snap.Category.ThreadCount)
	assert.Equal(t, 450, snap.Category.PostCount)
}

func TestDeleteThreadRollback(t *testing.T) {
	remote := &mockRemote{
		DeleteThreadFunc: func(domain.ThreadId) error {
			return &internal_errors.ServerError{StatusCode: 403, Message: "admins only"}
		},
	}
	exec, st := newTestExecutor(remote)
	before := st.Snapshot()

	_, err := exec.Execute(context.Background(), NewDeleteThread(8))
	require.Error(t, err)
	assert.Equal(t, before, st.Snapshot())
}

func TestTogglePin(t *testing.T) {
	t.Run("success adopts server copy", func(t *testing.T) {
		remote := &mockRemote{
			TogglePinFunc: func(id domain.ThreadId, desired *bool) (domain.Thread, error) {
				return domain.Thread{Id: id, Slug: "go-generics", Title: "Generics", ReplyCount: 2, IsPinned: true}, nil
			},
		}
		exec, st := newTestExecutor(remote)

		_, err := exec.Execute(context.Background(), NewTogglePin(7, nil))
		require.NoError(t, err)

		snap := st.Snapshot()
		assert.True(t, snap.Thread.IsPinned)
		assert.True(t, snap.Threads[0].IsPinned)
	})

	t.Run("failure restores the flag", func(t *testing.T) {
		remote := &mockRemote{
			TogglePinFunc: func(domain.ThreadId, *bool) (domain.Thread, error) {
				return domain.Thread{}, &internal_errors.NetworkError{Err: context.DeadlineExceeded}
			},
		}
		exec, st := newTestExecutor(remote)
		before := st.Snapshot()

		_, err := exec.Execute(context.Background(), NewTogglePin(7, nil))

		var netErr *internal_errors.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, before, st.Snapshot())
	})
}

func TestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{
		UpdatePostFunc: func(id domain.PostId, data api.UpdatePostRequest) (domain.Post, error) {
			<-release
			return domain.Post{Id: id, Content: data.Content, IsEdited: true}, nil
		},
	}
	exec, _ := newTestExecutor(remote)

	firstDone := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background(), NewEditPost(100, "slow first edit"))
		firstDone <- err
	}()

	require.Eventually(t, func() bool {
		return exec.Busy("post/100")
	}, time.Second, time.Millisecond)

	// Second command for the same post: rejected, not queued, not applied.
	_, err := exec.Execute(context.Background(), NewEditPost(100, "impatient second edit"))
	var busyErr *internal_errors.BusyError
	require.ErrorAs(t, err, &busyErr)

	close(release)
	require.NoError(t, <-firstDone)
	assert.False(t, exec.Busy("post/100"))
}

func TestStaleSettleAfterThreadDeletion(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{
		UpdatePostFunc: func(id domain.PostId, data api.UpdatePostRequest) (domain.Post, error) {
			<-release
			return domain.Post{}, &internal_errors.ServerError{StatusCode: 500, Message: "too late anyway"}
		},
	}
	exec, st := newTestExecutor(remote)

	editDone := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background(), NewEditPost(100, "edit racing a deletion"))
		editDone <- err
	}()
	require.Eventually(t, func() bool {
		return exec.Busy("post/100")
	}, time.Second, time.Millisecond)

	// The thread disappears while the edit is in flight.
	_, err := exec.Execute(context.Background(), NewDeleteThread(7))
	require.NoError(t, err)
	deleted := st.Snapshot()
	require.Nil(t, deleted.Thread)
	require.Empty(t, deleted.Posts)

	// The edit's failure settle must not resurrect anything.
	close(release)
	var staleErr *internal_errors.StaleEntityError
	require.ErrorAs(t, <-editDone, &staleErr)
	assert.Equal(t, deleted, st.Snapshot())
}

func TestRollbackPreservesSiblingCommit(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	remote := &mockRemote{
		TogglePinFunc: func(id domain.ThreadId, desired *bool) (domain.Thread, error) {
			if id == 7 {
				close(inFlight)
				<-release
				return domain.Thread{}, &internal_errors.ServerError{StatusCode: 500, Message: "pin refused"}
			}
			return domain.Thread{Id: 8, Slug: "error-handling", CategorySlug: "tools", Title: "Errors", ReplyCount: 10, IsPinned: true}, nil
		},
	}
	exec, st := newTestExecutor(remote)

	pinned := true
	firstDone := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background(), NewTogglePin(7, &pinned))
		firstDone <- err
	}()
	<-inFlight

	// A pin of another thread commits while the first is still in flight.
	_, err := exec.Execute(context.Background(), NewTogglePin(8, &pinned))
	require.NoError(t, err)
	require.True(t, st.Snapshot().Threads[1].IsPinned)

	// The first pin now fails. Its rollback must revert only thread 7.
	close(release)
	require.Error(t, <-firstDone)

	snap := st.Snapshot()
	assert.False(t, snap.Thread.IsPinned)
	assert.False(t, snap.Threads[0].IsPinned)
	assert.True(t, snap.Threads[1].IsPinned)
}

func TestCreatePostRollbackKeepsSiblingPost(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	remote := &mockRemote{
		CreatePostFunc: func(threadId domain.ThreadId, data api.CreatePostRequest) (domain.Post, error) {
			if data.Content == "first reply, stuck in flight" {
				close(inFlight)
				<-release
				return domain.Post{}, &internal_errors.ServerError{StatusCode: 502, Message: "write failed"}
			}
			return domain.Post{Id: 601, ThreadId: threadId, AuthorId: 3, Content: data.Content}, nil
		},
	}
	exec, st := newTestExecutor(remote)

	firstDone := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background(), NewCreatePost(7, "first reply, stuck in flight"))
		firstDone <- err
	}()
	<-inFlight

	_, err := exec.Execute(context.Background(), NewCreatePost(7, "second reply, lands first"))
	require.NoError(t, err)

	close(release)
	var serverErr *internal_errors.ServerError
	require.ErrorAs(t, <-firstDone, &serverErr)

	// Only the failed tentative post is gone; the committed sibling and the
	// counters it earned stay.
	snap := st.Snapshot()
	require.Len(t, snap.Posts, 3)
	assert.Equal(t, domain.PostId(601), snap.Posts[2].Id)
	assert.False(t, snap.Posts[2].Pending)
	assert.Equal(t, 3, snap.Thread.ReplyCount)
	assert.Equal(t, 3, snap.Threads[0].ReplyCount)
	assert.Equal(t, 41, snap.Category.PostCount)
	assert.Equal(t, 3, snap.PostsMeta.Total)
}

func TestCreateThread(t *testing.T) {
	exec, st := newTestExecutor(&mockRemote{})

	result, err := exec.Execute(context.Background(), NewCreateThread("tools", "A new topic", "opening content"))
	require.NoError(t, err)
	require.NotNil(t, result.Thread)
	assert.Equal(t, domain.ThreadId(900), result.Thread.Id)

	snap := st.Snapshot()
	require.Len(t, snap.Threads, 3)
	assert.Equal(t, domain.ThreadId(900), snap.Threads[2].Id)
	assert.False(t, snap.Threads[2].Pending)
	assert.Equal(t, 4, snap.Category.ThreadCount)
	assert.Equal(t, 4, snap.ThreadsMeta.Total)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&internal_errors.NetworkError{Err: context.DeadlineExceeded}))
	assert.True(t, IsRetryable(&internal_errors.BusyError{Key: "thread/7"}))
	assert.False(t, IsRetryable(&internal_errors.ServerError{StatusCode: 403, Message: "forbidden"}))
	assert.False(t, IsRetryable(&internal_errors.ValidationError{Message: "too short"}))
	assert.False(t, IsRetryable(&internal_errors.StaleEntityError{Key: "post/100"}))
}

func TestCreateThreadCategoryMismatch(t *testing.T) {
	exec, st := newTestExecutor(&mockRemote{})
	before := st.Snapshot()

	// The listing shows "tools"; a thread aimed at another category must not
	// be staged into it.
	_, err := exec.Execute(context.Background(), NewCreateThread("offtopic", "Wrong room", "opening content"))

	var staleErr *internal_errors.StaleEntityError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, before, st.Snapshot())
}

func TestLoadThreadHydrates(t *testing.T) {
	remote := &mockRemote{
		GetThreadFunc: func(slug domain.ThreadSlug, page, limit int) (api.ThreadPageResponse, error) {
			return api.ThreadPageResponse{
				Thread:     domain.Thread{Id: 42, Slug: slug, ReplyCount: 1},
				Posts:      []domain.Post{{Id: 1, ThreadId: 42, Content: "hello"}},
				Pagination: domain.Recompute(1, limit, page),
			}, nil
		},
	}
	st := store.New()
	exec := New(st, remote, validation.Default())

	state, err := exec.LoadThread(context.Background(), "any-slug", 1, 20)
	require.NoError(t, err)
	require.NotNil(t, state.Thread)
	assert.Equal(t, domain.ThreadId(42), state.Thread.Id)
	assert.Len(t, state.Posts, 1)
}
