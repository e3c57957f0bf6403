package engine

import (
	"context"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
	"github.com/forumflow-dev/forumflow/internal/store"
)

// Mock remote in the usual func-field style: zero value answers everything
// with plausible defaults, tests override just the calls they care about.
type mockRemote struct {
	ListThreadsFunc       func(categorySlug string, page, limit int, sortBy string) (api.ThreadListResponse, error)
	GetThreadFunc         func(slug domain.ThreadSlug, page, limit int) (api.ThreadPageResponse, error)
	CreateThreadFunc      func(data api.CreateThreadRequest) (domain.Thread, error)
	UpdateThreadFunc      func(id domain.ThreadId, data api.UpdateThreadRequest) (domain.Thread, error)
	DeleteThreadFunc      func(id domain.ThreadId) error
	CreatePostFunc        func(threadId domain.ThreadId, data api.CreatePostRequest) (domain.Post, error)
	UpdatePostFunc        func(id domain.PostId, data api.UpdatePostRequest) (domain.Post, error)
	DeletePostFunc        func(id domain.PostId) error
	TogglePinFunc         func(id domain.ThreadId, desired *bool) (domain.Thread, error)
	ToggleLockFunc        func(id domain.ThreadId, desired *bool) (domain.Thread, error)
	BulkUpdateThreadsFunc func(data api.BulkThreadUpdateRequest) error
}

func (m *mockRemote) ListThreads(_ context.Context, categorySlug string, page, limit int, sortBy string) (api.ThreadListResponse, error) {
	if m.ListThreadsFunc != nil {
		return m.ListThreadsFunc(categorySlug, page, limit, sortBy)
	}
	return api.ThreadListResponse{Pagination: domain.Recompute(0, limit, page)}, nil
}

func (m *mockRemote) GetThread(_ context.Context, slug domain.ThreadSlug, page, limit int) (api.ThreadPageResponse, error) {
	if m.GetThreadFunc != nil {
		return m.GetThreadFunc(slug, page, limit)
	}
	return api.ThreadPageResponse{
		Thread:     domain.Thread{Id: 1, Slug: slug},
		Pagination: domain.Recompute(0, limit, page),
	}, nil
}

func (m *mockRemote) CreateThread(_ context.Context, data api.CreateThreadRequest) (domain.Thread, error) {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(data)
	}
	return domain.Thread{Id: 900, Slug: "new-thread", CategorySlug: data.CategorySlug, Title: data.Title, Content: data.Content}, nil
}

func (m *mockRemote) UpdateThread(_ context.Context, id domain.ThreadId, data api.UpdateThreadRequest) (domain.Thread, error) {
	if m.UpdateThreadFunc != nil {
		return m.UpdateThreadFunc(id, data)
	}
	thread := domain.Thread{Id: id}
	if data.Title != nil {
		thread.Title = *data.Title
	}
	if data.Content != nil {
		thread.Content = *data.Content
	}
	return thread, nil
}

func (m *mockRemote) DeleteThread(_ context.Context, id domain.ThreadId) error {
	if m.DeleteThreadFunc != nil {
		return m.DeleteThreadFunc(id)
	}
	return nil
}

func (m *mockRemote) CreatePost(_ context.Context, threadId domain.ThreadId, data api.CreatePostRequest) (domain.Post, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(threadId, data)
	}
	return domain.Post{Id: 500, ThreadId: threadId, Content: data.Content}, nil
}

func (m *mockRemote) UpdatePost(_ context.Context, id domain.PostId, data api.UpdatePostRequest) (domain.Post, error) {
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(id, data)
	}
	return domain.Post{Id: id, Content: data.Content, IsEdited: true}, nil
}

func (m *mockRemote) DeletePost(_ context.Context, id domain.PostId) error {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(id)
	}
	return nil
}

func (m *mockRemote) TogglePin(_ context.Context, id domain.ThreadId, desired *bool) (domain.Thread, error) {
	if m.TogglePinFunc != nil {
		return m.TogglePinFunc(id, desired)
	}
	thread := domain.Thread{Id: id}
	if desired != nil {
		thread.IsPinned = *desired
	}
	return thread, nil
}

func (m *mockRemote) ToggleLock(_ context.Context, id domain.ThreadId, desired *bool) (domain.Thread, error) {
	if m.ToggleLockFunc != nil {
		return m.ToggleLockFunc(id, desired)
	}
	thread := domain.Thread{Id: id}
	if desired != nil {
		thread.IsLocked = *desired
	}
	return thread, nil
}

func (m *mockRemote) BulkUpdateThreads(_ context.Context, data api.BulkThreadUpdateRequest) error {
	if m.BulkUpdateThreadsFunc != nil {
		return m.BulkUpdateThreadsFunc(data)
	}
	return nil
}

// seedThreadView hydrates an open thread with two committed posts plus the
// category aggregate, mirroring what a thread page fetch produces.
func seedThreadView(st *store.Store) {
	st.HydrateThreadPage(
		domain.Thread{Id: 7, Slug: "go-generics", CategorySlug: "tools", Title: "Generics", ReplyCount: 2},
		[]domain.Post{
			{Id: 100, ThreadId: 7, AuthorId: 1, Content: "first post"},
			{Id: 101, ThreadId: 7, AuthorId: 2, Content: "second post"},
		},
		domain.Recompute(2, 20, 1),
	)
	st.HydrateListing(
		&domain.CategoryAggregate{Slug: "tools", Name: "Tools", ThreadCount: 3, PostCount: 40},
		[]domain.Thread{
			{Id: 7, Slug: "go-generics", CategorySlug: "tools", Title: "Generics", ReplyCount: 2},
			{Id: 8, Slug: "error-handling", CategorySlug: "tools", Title: "Errors", ReplyCount: 10},
		},
		domain.Recompute(3, 20, 1),
	)
}
