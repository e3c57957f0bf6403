package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/forumflow-dev/forumflow/internal/auth"
	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
)

// APIClient handles all communication with the forum backend.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	Tokens     auth.TokenSource
}

// New creates a new client for interacting with the backend.
func New(baseURL string, tokens auth.TokenSource) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{},
		Tokens:     tokens,
	}
}

// do is the single, unified helper for making API requests. A nil body sends
// an empty request; anything else is marshaled as JSON. Transport failures
// come back as NetworkError so callers can roll back uniformly.
func (c *APIClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.Tokens != nil {
		token, err := c.Tokens.Token()
		if err != nil {
			return nil, &internal_errors.ValidationError{Message: err.Error()}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, &internal_errors.NetworkError{Err: err}
	}
	return resp, nil
}

// serverError drains the response body and extracts a displayable message.
// Status code detail never changes rollback behavior, only the message.
func serverError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil {
		if envelope.Error != "" {
			message = envelope.Error
		} else {
			message = envelope.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(bodyBytes))
	}
	return &internal_errors.ServerError{StatusCode: resp.StatusCode, Message: message}
}

func decode(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}
