package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/forumflow-dev/forumflow/internal/api"
	"github.com/forumflow-dev/forumflow/internal/domain"
)

func (c *APIClient) CreatePost(ctx context.Context, threadId domain.ThreadId, data api.CreatePostRequest) (domain.Post, error) {
	var post domain.Post

	resp, err := c.do(ctx, "POST", fmt.Sprintf("/forum/threads/%d/posts", threadId), data)
	if err != nil {
		return post, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return post, serverError(resp)
	}
	if err := decode(resp, &post); err != nil {
		return post, err
	}
	return post, nil
}

func (c *APIClient) UpdatePost(ctx context.Context, id domain.PostId, data api.UpdatePostRequest) (domain.Post, error) {
	var post domain.Post

	resp, err := c.do(ctx, "PATCH", fmt.Sprintf("/forum/posts/%d", id), data)
	if err != nil {
		return post, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return post, serverError(resp)
	}
	if err := decode(resp, &post); err != nil {
		return post, err
	}
	return post, nil
}

func (c *APIClient) DeletePost(ctx context.Context, id domain.PostId) error {
	resp, err := c.do(ctx, "DELETE", fmt.Sprintf("/forum/posts/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return serverError(resp)
	}
	return nil
}
