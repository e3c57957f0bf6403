package engine

import (
	"context"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
)

// Remote is the authoritative store as the engine sees it. apiclient.APIClient
// satisfies it; tests swap in func-field mocks.
type Remote interface {
	ListThreads(ctx context.Context, categorySlug string, page, limit int, sortBy string) (api.ThreadListResponse, error)
	GetThread(ctx context.Context, slug domain.ThreadSlug, page, limit int) (api.ThreadPageResponse, error)
	CreateThread(ctx context.Context, data api.CreateThreadRequest) (domain.Thread, error)
	UpdateThread(ctx context.Context, id domain.ThreadId, data api.UpdateThreadRequest) (domain.Thread, error)
	DeleteThread(ctx context.Context, id domain.ThreadId) error
	CreatePost(ctx context.Context, threadId domain.ThreadId, data api.CreatePostRequest) (domain.Post, error)
	UpdatePost(ctx context.Context, id domain.PostId, data api.UpdatePostRequest) (domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
	TogglePin(ctx context.Context, id domain.ThreadId, desired *bool) (domain.Thread, error)
	ToggleLock(ctx context.Context, id domain.ThreadId, desired *bool) (domain.Thread, error)
	BulkUpdateThreads(ctx context.Context, data api.BulkThreadUpdateRequest) error
}
