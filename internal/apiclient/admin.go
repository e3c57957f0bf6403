package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
)

func (c *APIClient) TogglePin(ctx context.Context, id domain.ThreadId, desired *bool) (domain.Thread, error) {
	var thread domain.Thread

	resp, err := c.do(ctx, "PATCH", fmt.Sprintf("/forum/threads/%d/pin", id), api.TogglePinRequest{IsPinned: desired})
	if err != nil {
		return thread, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return thread, serverError(resp)
	}
	if err := decode(resp, &thread); err != nil {
		return thread, err
	}
	return thread, nil
}

func (c *APIClient) ToggleLock(ctx context.Context, id domain.ThreadId, desired *bool) (domain.Thread, error) {
	var thread domain.Thread

	resp, err := c.do(ctx, "PATCH", fmt.Sprintf("/forum/threads/%d/lock", id), api.ToggleLockRequest{IsLocked: desired})
	if err != nil {
		return thread, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return thread, serverError(resp)
	}
	if err := decode(resp, &thread); err != nil {
		return thread, err
	}
	return thread, nil
}

// BulkUpdateThreads hits the all-or-nothing admin endpoint. The moderation
// coordinator prefers per-id calls for partial-failure reporting; this path
// exists for callers that want the batch applied atomically server-side.
func (c *APIClient) BulkUpdateThreads(ctx context.Context, data api.BulkThreadUpdateRequest) error {
	resp, err := c.do(ctx, "PATCH", "/forum/admin/threads/bulk", data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return serverError(resp)
	}
	return nil
}
