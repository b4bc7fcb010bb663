package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"dash-sync/core/entity"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type item struct {
	ID        string           `json:"_id"`
	Name      string           `json:"name,omitempty"`
	Workspace string           `json:"workspace,omitempty"`
	Lifecycle entity.Lifecycle `json:"lifecycleState,omitempty"`
}

func (i item) EntityID() string {
	return i.ID
}

func (i item) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(i.Lifecycle)
}

func (i item) WithLifecycle(lc entity.Lifecycle) item {
	i.Lifecycle = lc
	return i
}

// fakeFetcher serves workspace-keyed collections. The workspace is captured
// at call entry, before the optional gate, so an in-flight call keeps the
// scope it was issued under.
type fakeFetcher struct {
	mu    sync.Mutex
	ws    string
	data  map[string][]item
	byID  map[string]item
	err   error
	lists int
	gets  int
	gate  chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: map[string][]item{}, byID: map[string]item{}}
}

func (f *fakeFetcher) setWorkspace(ws string) {
	f.mu.Lock()
	f.ws = ws
	f.mu.Unlock()
}

func (f *fakeFetcher) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeFetcher) List(ctx context.Context) ([]item, error) {
	f.mu.Lock()
	ws := f.ws
	gate := f.gate
	f.lists++
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]item(nil), f.data[ws]...), nil
}

func (f *fakeFetcher) Get(ctx context.Context, id string) (item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	doc, ok := f.byID[id]
	if !ok {
		return item{}, errors.New("not found")
	}
	return doc, nil
}

func newTestSession(t *testing.T, fetch *fakeFetcher, source push.Source, poll time.Duration, opts ...Option[item]) *Session[item] {
	t.Helper()
	st := store.New[item](nil)
	s := New(Config{Kind: "item", PollInterval: poll, Logger: zap.NewNop()}, st, fetch, source, opts...)
	t.Cleanup(s.Stop)
	return s
}

func waitHydrated(t *testing.T, s *Session[item]) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !s.Store().Loading()
	}, time.Second, 5*time.Millisecond)
}

func TestInitialFetchHydrates(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}, {ID: "2", Lifecycle: entity.LifecycleTrashed}}

	s := newTestSession(t, fetch, push.NewFake(), 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	assert.Equal(t, 1, s.Store().Len())
	assert.Len(t, s.Store().Trashed(), 1)
}

func TestFetchErrorKeepsData(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}}

	s := newTestSession(t, fetch, push.NewFake(), 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	fetch.mu.Lock()
	fetch.err = errors.New("upstream down")
	fetch.mu.Unlock()
	s.Refresh()

	require.Eventually(t, func() bool {
		return s.Store().Err() != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Store().Len())
}

func TestScopeSwitchDiscardsStaleFetch(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.gate = make(chan struct{})
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "old"}}
	fetch.data["ws-2"] = []item{{ID: "new"}}

	s := newTestSession(t, fetch, push.NewFake(), 0)
	s.Start("ws-1")

	// The first fetch is in flight when the workspace switches
	require.Eventually(t, func() bool {
		return fetch.listCalls() == 1
	}, time.Second, 5*time.Millisecond)

	fetch.setWorkspace("ws-2")
	s.SetScope("ws-2")

	require.Eventually(t, func() bool {
		return fetch.listCalls() == 2
	}, time.Second, 5*time.Millisecond)

	// Release both fetches; the ws-1 completion must be discarded
	close(fetch.gate)
	waitHydrated(t, s)

	docs := s.Store().All()
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].ID)
	_, ok := s.Store().Get("old")
	assert.False(t, ok)
}

func TestScopeSwitchResetsBeforeFetch(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "old"}}
	fetch.data["ws-2"] = []item{{ID: "new"}}

	s := newTestSession(t, fetch, push.NewFake(), 0)
	s.Start("ws-1")
	waitHydrated(t, s)
	require.Equal(t, 1, s.Store().Len())

	fetch.setWorkspace("ws-2")
	s.SetScope("ws-2")

	// The store passes through loading again and comes back with the new
	// scope's data only
	require.Eventually(t, func() bool {
		docs := s.Store().All()
		return !s.Store().Loading() && len(docs) == 1 && docs[0].ID == "new"
	}, time.Second, 5*time.Millisecond)
}

func TestPollingMergesCollections(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}}

	s := newTestSession(t, fetch, push.NewFake(), 10*time.Millisecond)
	s.Start("ws-1")
	waitHydrated(t, s)

	fetch.mu.Lock()
	fetch.data["ws-1"] = []item{{ID: "2"}, {ID: "1"}}
	fetch.mu.Unlock()

	require.Eventually(t, func() bool {
		return s.Store().Len() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestHiddenStopsPolling(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")

	s := newTestSession(t, fetch, push.NewFake(), 10*time.Millisecond)
	s.Start("ws-1")

	require.Eventually(t, func() bool {
		return fetch.listCalls() >= 3
	}, time.Second, 5*time.Millisecond)

	s.SetVisible(false)
	// Let in-flight work drain, then confirm the counter stops moving
	time.Sleep(50 * time.Millisecond)
	before := fetch.listCalls()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, before, fetch.listCalls())

	// Visible again fires an immediate fetch
	s.SetVisible(true)
	require.Eventually(t, func() bool {
		return fetch.listCalls() > before
	}, time.Second, 5*time.Millisecond)
}

func TestPushCreatedAppliesDocument(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	require.NoError(t, fake.Emit("item:created", item{ID: "1", Name: "pushed"}))

	require.Eventually(t, func() bool {
		doc, ok := s.Store().Get("1")
		return ok && doc.Name == "pushed"
	}, time.Second, 5*time.Millisecond)
}

func TestPushIDOnlyPayloadResolves(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.byID["1"] = item{ID: "1", Name: "resolved"}
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	require.NoError(t, fake.Emit("item:updated", "1"))

	require.Eventually(t, func() bool {
		doc, ok := s.Store().Get("1")
		return ok && doc.Name == "resolved"
	}, time.Second, 5*time.Millisecond)
}

func TestPushDeletedRemoves(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}}
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	require.NoError(t, fake.Emit("item:deleted", "1"))

	require.Eventually(t, func() bool {
		return s.Store().Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestPushTrashedMovesCachedDocument(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1", Name: "kept"}}
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	// A bare-id trashed marker moves the cached document with its fields
	require.NoError(t, fake.Emit("item:trashed", "1"))

	require.Eventually(t, func() bool {
		trashed := s.Store().Trashed()
		return s.Store().Len() == 0 && len(trashed) == 1 && trashed[0].Name == "kept"
	}, time.Second, 5*time.Millisecond)
}

func TestPushTrashedUnknownIDIsNoop(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}}
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	require.NoError(t, fake.Emit("item:trashed", "ghost"))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, s.Store().Len())
	assert.Empty(t, s.Store().Trashed())
}

func TestPushRestoredReactivates(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1", Lifecycle: entity.LifecycleTrashed}}
	fetch.byID["1"] = item{ID: "1", Lifecycle: entity.LifecycleTrashed}
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)
	require.Len(t, s.Store().Trashed(), 1)

	require.NoError(t, fake.Emit("item:restored", "1"))

	require.Eventually(t, func() bool {
		doc, ok := s.Store().Get("1")
		return ok && s.Store().Len() == 1 && doc.EntityLifecycle() == entity.LifecycleActive
	}, time.Second, 5*time.Millisecond)
}

func TestPushForeignWorkspaceIgnored(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	require.NoError(t, fake.Emit("item:created", item{ID: "1", Workspace: "ws-other"}))
	require.NoError(t, fake.Emit("item:created", item{ID: "2", Workspace: "ws-1"}))

	require.Eventually(t, func() bool {
		_, ok := s.Store().Get("2")
		return ok
	}, time.Second, 5*time.Millisecond)
	_, ok := s.Store().Get("1")
	assert.False(t, ok)
}

func TestPushDispatchesPropagation(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fake := push.NewFake()

	table := propagate.NewTable(zap.NewNop())
	var mu sync.Mutex
	var fired []propagate.EventKind
	table.Register(propagate.Rule{
		Name:   "capture",
		Source: "item",
		Events: []propagate.EventKind{propagate.EventCreated, propagate.EventDeleted},
		Apply: func(_ context.Context, _ json.RawMessage) error {
			mu.Lock()
			defer mu.Unlock()
			fired = append(fired, propagate.EventCreated)
			return nil
		},
	})

	s := newTestSession(t, fetch, fake, 0, WithPropagation[item](table))
	s.Start("ws-1")
	waitHydrated(t, s)

	require.NoError(t, fake.Emit("item:created", item{ID: "1", Name: "inline"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStopHaltsMutation(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}}
	fake := push.NewFake()

	s := newTestSession(t, fetch, fake, 10*time.Millisecond)
	s.Start("ws-1")
	waitHydrated(t, s)

	s.Stop()
	calls := fetch.listCalls()

	require.NoError(t, fake.Emit("item:created", item{ID: "2"}))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, s.Store().Len())
	assert.Equal(t, calls, fetch.listCalls())

	// Stopping twice is safe
	s.Stop()
}

func TestPreloadSeedsUntilFirstFetch(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.gate = make(chan struct{})
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "fresh"}}

	s := newTestSession(t, fetch, push.NewFake(), 0)
	s.Preload([]item{{ID: "stale"}})
	s.Start("ws-1")

	// The snapshot shows while the first fetch is in flight
	assert.True(t, s.Store().Loading())
	_, ok := s.Store().Get("stale")
	assert.True(t, ok)

	close(fetch.gate)
	waitHydrated(t, s)

	docs := s.Store().All()
	require.Len(t, docs, 1)
	assert.Equal(t, "fresh", docs[0].ID)
}

func TestRefreshIfStale(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")

	s := newTestSession(t, fetch, push.NewFake(), 0)
	s.Start("ws-1")
	waitHydrated(t, s)

	calls := fetch.listCalls()
	s.RefreshIfStale()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, fetch.listCalls())

	s.Store().MarkStale()
	s.RefreshIfStale()
	require.Eventually(t, func() bool {
		return fetch.listCalls() > calls && !s.Store().Stale()
	}, time.Second, 5*time.Millisecond)
}

func TestPersistHookReceivesHydration(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.setWorkspace("ws-1")
	fetch.data["ws-1"] = []item{{ID: "1"}}

	var mu sync.Mutex
	var scopes []string
	persist := func(_ context.Context, scope string, _ []item) {
		mu.Lock()
		defer mu.Unlock()
		scopes = append(scopes, scope)
	}

	s := newTestSession(t, fetch, push.NewFake(), 0, WithPersist[item](persist))
	s.Start("ws-1")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(scopes) >= 1 && scopes[0] == "ws-1"
	}, time.Second, 5*time.Millisecond)
}

func TestVisibilityHub(t *testing.T) {
	hub := NewVisibilityHub()
	assert.True(t, hub.Visible())

	var got []bool
	hub.Attach(func(v bool) { got = append(got, v) })

	hub.Set(true) // repeated state, not re-sent
	hub.Set(false)
	hub.Set(false)
	hub.Set(true)

	assert.Equal(t, []bool{false, true}, got)
	assert.True(t, hub.Visible())
}
