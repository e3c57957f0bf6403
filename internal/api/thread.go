package api

import (
	"github.com/forumflow-dev/forumflow/internal/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	CategorySlug string `json:"categorySlug" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Content      string `json:"content" validate:"required"`
}

type UpdateThreadRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type TogglePinRequest struct {
	IsPinned *bool `json:"isPinned,omitempty"`
}

type ToggleLockRequest struct {
	IsLocked *bool `json:"isLocked,omitempty"`
}

type BulkThreadUpdateRequest struct {
	Ids      []domain.ThreadId `json:"ids" validate:"required,min=1"`
	IsPinned *bool             `json:"isPinned,omitempty"`
	IsLocked *bool             `json:"isLocked,omitempty"`
	Delete   bool              `json:"delete,omitempty"`
}

// Response DTOs

// ThreadListResponse is a category listing page. Category is the
// authoritative aggregate refresh that rides along with every listing fetch.
type ThreadListResponse struct {
	Category   *domain.CategoryAggregate `json:"category,omitempty"`
	Threads    []domain.Thread           `json:"threads"`
	Pagination domain.PaginationMeta     `json:"pagination"`
}

// ThreadPageResponse is one page of a thread with its posts.
type ThreadPageResponse struct {
	Thread     domain.Thread         `json:"thread"`
	Posts      []domain.Post         `json:"posts"`
	Pagination domain.PaginationMeta `json:"pagination"`
}
