package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Token: "secret-token"})
	require.NoError(t, err)
	return client
}

func TestClientStampsHeaders(t *testing.T) {
	var got http.Header
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		w.Write([]byte(`{}`))
	})
	client.SetWorkspace("ws-1")

	var out map[string]any
	require.NoError(t, client.Get(context.Background(), "projects", &out))

	assert.Equal(t, "/projects", path)
	assert.Equal(t, "Bearer secret-token", got.Get("Authorization"))
	assert.Equal(t, "ws-1", got.Get("X-Workspace-Id"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClientOmitsEmptyWorkspace(t *testing.T) {
	var got http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	})

	var out map[string]any
	require.NoError(t, client.Get(context.Background(), "projects", &out))
	_, present := got["X-Workspace-Id"]
	assert.False(t, present)
}

func TestClientSwitchesWorkspaceAtRuntime(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Workspace-Id"))
		w.Write([]byte(`{}`))
	})

	client.SetWorkspace("ws-1")
	var out map[string]any
	require.NoError(t, client.Get(context.Background(), "projects", &out))

	client.SetWorkspace("ws-2")
	require.NoError(t, client.Get(context.Background(), "projects", &out))

	assert.Equal(t, []string{"ws-1", "ws-2"}, seen)
}

func TestClientTypedError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	err := client.Get(context.Background(), "projects/missing", &map[string]any{})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Body, "not found")
}

func TestClientPostEncodesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"p1","name":"echo"}`))
	})

	var out struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	err := client.Post(context.Background(), "projects", map[string]string{"name": "echo"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "p1", out.ID)
}

func TestClientDeleteNoBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, client.Delete(context.Background(), "projects/p1"))
}

func TestCollectionListAndGet(t *testing.T) {
	type item struct {
		ID string `json:"_id"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/items":
			w.Write([]byte(`[{"_id":"1"},{"_id":"2"}]`))
		case "/items/1":
			w.Write([]byte(`{"_id":"1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	col := NewCollection[item](client, "items")

	docs, err := col.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	doc, err := col.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", doc.ID)

	_, err = col.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{BaseURL: "http://bad url with spaces"})
	assert.Error(t, err)
}
