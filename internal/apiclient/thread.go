package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
)

func (c *APIClient) ListThreads(ctx context.Context, categorySlug string, page, limit int, sortBy string) (api.ThreadListResponse, error) {
	var listing api.ThreadListResponse

	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", limit))
	if sortBy != "" {
		query.Set("sortBy", sortBy)
	}
	path := fmt.Sprintf("/forum/categories/%s/threads?%s", url.PathEscape(categorySlug), query.Encode())

	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return listing, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return listing, serverError(resp)
	}
	if err := decode(resp, &listing); err != nil {
		return listing, err
	}
	return listing, nil
}

func (c *APIClient) GetThread(ctx context.Context, slug domain.ThreadSlug, page, limit int) (api.ThreadPageResponse, error) {
	var threadPage api.ThreadPageResponse

	path := fmt.Sprintf("/forum/threads/%s?page=%d&limit=%d", url.PathEscape(slug), page, limit)
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return threadPage, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return threadPage, serverError(resp)
	}
	if err := decode(resp, &threadPage); err != nil {
		return threadPage, err
	}
	return threadPage, nil
}

func (c *APIClient) CreateThread(ctx context.Context, data api.CreateThreadRequest) (domain.Thread, error) {
	var thread domain.Thread

	resp, err := c.do(ctx, "POST", "/forum/threads", data)
	if err != nil {
		return thread, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return thread, serverError(resp)
	}
	if err := decode(resp, &thread); err != nil {
		return thread, err
	}
	return thread, nil
}

func (c *APIClient) UpdateThread(ctx context.Context, id domain.ThreadId, data api.UpdateThreadRequest) (domain.Thread, error) {
	var thread domain.Thread

	resp, err := c.do(ctx, "PATCH", fmt.Sprintf("/forum/threads/%d", id), data)
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

func (c *APIClient) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	resp, err := c.do(ctx, "DELETE", fmt.Sprintf("/forum/threads/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return serverError(resp)
	}
	return nil
}
