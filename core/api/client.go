package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Error is returned for non-2xx responses so callers can branch on status.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: server returned %d", e.Status)
	}
	return fmt.Sprintf("api: server returned %d: %s", e.Status, e.Body)
}

// Client is the REST fetch collaborator. The workspace scope is stamped on
// every outgoing request and may be switched at runtime; the client treats
// it as an opaque key.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client

	mu        sync.RWMutex
	workspace string
}

// New creates a client from configuration.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	return &Client{
		base:  base,
		token: cfg.Token,
		http:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

// SetWorkspace switches the active workspace scope.
func (c *Client) SetWorkspace(ws string) {
	c.mu.Lock()
	c.workspace = ws
	c.mu.Unlock()
}

// Workspace returns the active workspace scope.
func (c *Client) Workspace() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.workspace
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out
// (out may be nil).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+"/"+strings.TrimPrefix(path, "/"), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if ws := c.Workspace(); ws != "" {
		req.Header.Set("X-Workspace-Id", ws)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s %s: %w", method, path, err)
	}
	return nil
}

// Collection adapts the client to one entity type's list/detail endpoints.
// It satisfies the session fetcher contract.
type Collection[T any] struct {
	client *Client
	path   string
}

// NewCollection binds a client to an entity path, e.g. "projects".
func NewCollection[T any](client *Client, path string) Collection[T] {
	return Collection[T]{client: client, path: strings.Trim(path, "/")}
}

// List fetches the full collection.
func (col Collection[T]) List(ctx context.Context) ([]T, error) {
	var docs []T
	if err := col.client.Get(ctx, col.path, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get fetches one document by id. Detail responses may carry more resolved
// fields than the list endpoint returned for the same record.
func (col Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	if err := col.client.Get(ctx, col.path+"/"+url.PathEscape(id), &doc); err != nil {
		return doc, err
	}
	return doc, nil
}
