package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"dash-sync/core/entity"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/store"

	"go.uber.org/zap"
)

// resolveTimeout bounds the by-id fetch used to inline id-only push
// payloads.
const resolveTimeout = 10 * time.Second

// Fetcher is the read side of the REST collaborator for one entity type.
type Fetcher[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
}

// Config holds per-entity-type session settings.
type Config struct {
	// Kind is the singular entity name used as the push event prefix,
	// e.g. "project" subscribes to "project:created" and friends.
	Kind string
	// PollInterval is the steady-state poll period. Zero disables polling;
	// the session is then event-only (suitable for low-churn entities).
	PollInterval time.Duration
	// Logger for session activity. Nil falls back to a no-op logger.
	Logger *zap.Logger
}

// Option configures optional session collaborators.
type Option[T entity.Entity[T]] func(*Session[T])

// WithPropagation routes applied push events into the cross-entity rule
// table.
func WithPropagation[T entity.Entity[T]](table *propagate.Table) Option[T] {
	return func(s *Session[T]) { s.table = table }
}

// WithPersist installs a snapshot hook invoked with every hydrated
// collection.
func WithPersist[T entity.Entity[T]](fn func(ctx context.Context, scope string, docs []T)) Option[T] {
	return func(s *Session[T]) { s.persist = fn }
}

// Session synchronizes one entity type's store against the server.
type Session[T entity.Entity[T]] struct {
	cfg     Config
	store   *store.Store[T]
	fetch   Fetcher[T]
	source  push.Source
	table   *propagate.Table
	persist func(ctx context.Context, scope string, docs []T)

	ctx    context.Context
	cancel context.CancelFunc
	msgs   chan any
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	subs    []push.Subscription

	// Worker-owned state. Only the run loop touches these.
	scope    string
	visible  bool
	hydrated bool
	pollC    <-chan time.Time
}

// Messages consumed by the worker.
type (
	fetchDoneMsg[T any] struct {
		scope string
		docs  []T
		err   error
	}
	pushEvMsg  struct{ ev push.Event }
	scopeMsg   struct{ scope string }
	visibleMsg struct{ visible bool }
	refreshMsg struct{}
	connectMsg struct{}
)

// New creates a session. Start activates it.
func New[T entity.Entity[T]](cfg Config, st *store.Store[T], fetch Fetcher[T], source push.Source, opts ...Option[T]) *Session[T] {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Session[T]{
		cfg:    cfg,
		store:  st,
		fetch:  fetch,
		source: source,
		msgs:   make(chan any, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the session's cache for handlers and services.
func (s *Session[T]) Store() *store.Store[T] {
	return s.store
}

// Kind returns the configured entity kind.
func (s *Session[T]) Kind() string {
	return s.cfg.Kind
}

// Preload seeds the store from a persisted snapshot. Must be called before
// Start; the first fetch still owns hydration.
func (s *Session[T]) Preload(docs []T) {
	s.store.Seed(docs)
}

// Start activates the session for a workspace scope: subscribes to push
// events, launches the worker, and issues the initial fetch. Calling Start
// on a running session is a no-op.
func (s *Session[T]) Start(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.scope = scope
	s.visible = true
	s.hydrated = false
	s.subscribeLocked()
	s.wg.Add(1)
	go s.run()
}

// Stop tears the session down: push subscriptions are released, the poll
// timer dies with the worker, and no further store mutation occurs.
func (s *Session[T]) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	for _, sub := range s.subs {
		_ = sub.Close()
	}
	s.subs = nil
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// SetScope switches the workspace scope. A change resets the store before
// any new fetch; in-flight completions for the old scope are discarded.
func (s *Session[T]) SetScope(scope string) {
	s.enqueue(scopeMsg{scope: scope})
}

// SetVisible gates polling on host view visibility. Hidden stops the poll
// timer; visible fires one immediate fetch before the interval resumes.
func (s *Session[T]) SetVisible(visible bool) {
	s.enqueue(visibleMsg{visible: visible})
}

// Refresh requests an immediate re-fetch, merged like a poll result.
func (s *Session[T]) Refresh() {
	s.enqueue(refreshMsg{})
}

// RefreshIfStale refreshes only when propagation has flagged the cache.
// Handlers call this on read to give staleness an eventual resolution.
func (s *Session[T]) RefreshIfStale() {
	if s.store.Stale() {
		s.Refresh()
	}
}

func (s *Session[T]) enqueue(m any) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()
	select {
	case s.msgs <- m:
	case <-ctx.Done():
	}
}

func (s *Session[T]) subscribeLocked() {
	handler := func(ev push.Event) { s.enqueue(pushEvMsg{ev: ev}) }
	for _, verb := range []string{"created", "updated", "deleted", "trashed", "restored"} {
		sub, err := s.source.Subscribe(s.cfg.Kind+":"+verb, handler)
		if err != nil {
			s.cfg.Logger.Warn("push subscription failed",
				zap.String("kind", s.cfg.Kind), zap.String("verb", verb), zap.Error(err))
			continue
		}
		s.subs = append(s.subs, sub)
	}
	sub, err := s.source.Subscribe(push.Connected, func(push.Event) { s.enqueue(connectMsg{}) })
	if err == nil {
		s.subs = append(s.subs, sub)
	}
}

func (s *Session[T]) resubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	for _, sub := range s.subs {
		_ = sub.Close()
	}
	s.subs = nil
	s.subscribeLocked()
}

func (s *Session[T]) run() {
	defer s.wg.Done()
	s.issueFetch()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.pollC:
			s.pollC = nil
			s.issueFetch()
		case m := <-s.msgs:
			s.handle(m)
		}
	}
}

// issueFetch launches a list fetch stamped with the scope it was issued
// for. The completion is applied only if that scope is still active.
func (s *Session[T]) issueFetch() {
	scope := s.scope
	ctx := s.ctx
	go func() {
		docs, err := s.fetch.List(ctx)
		if ctx.Err() != nil {
			return
		}
		select {
		case s.msgs <- fetchDoneMsg[T]{scope: scope, docs: docs, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *Session[T]) handle(m any) {
	switch m := m.(type) {
	case fetchDoneMsg[T]:
		s.applyFetch(m)
	case pushEvMsg:
		s.applyPush(m.ev)
	case connectMsg:
		s.resubscribe()
	case scopeMsg:
		if m.scope == s.scope {
			return
		}
		s.cfg.Logger.Info("workspace scope changed",
			zap.String("kind", s.cfg.Kind), zap.String("scope", m.scope))
		s.scope = m.scope
		s.hydrated = false
		s.pollC = nil
		s.store.Reset()
		s.issueFetch()
	case visibleMsg:
		if m.visible == s.visible {
			return
		}
		s.visible = m.visible
		if !m.visible {
			s.pollC = nil
			return
		}
		// Immediate refresh before the interval resumes.
		s.issueFetch()
	case refreshMsg:
		s.issueFetch()
	}
}

func (s *Session[T]) applyFetch(m fetchDoneMsg[T]) {
	if m.scope != s.scope {
		// Completion raced a workspace switch; its data belongs to the old
		// scope and must not leak into the new one.
		s.cfg.Logger.Debug("discarding fetch for stale scope",
			zap.String("kind", s.cfg.Kind), zap.String("scope", m.scope))
		return
	}
	switch {
	case m.err != nil:
		s.store.SetError(m.err)
		s.cfg.Logger.Warn("collection fetch failed",
			zap.String("kind", s.cfg.Kind), zap.Error(m.err))
	case !s.hydrated:
		s.store.Replace(m.docs)
		s.hydrated = true
		s.snapshot(m.scope, m.docs)
	default:
		s.store.MergeCollection(m.docs)
		s.snapshot(m.scope, m.docs)
	}
	s.schedulePoll()
}

func (s *Session[T]) schedulePoll() {
	if s.visible && s.cfg.PollInterval > 0 {
		s.pollC = time.After(s.cfg.PollInterval)
	}
}

func (s *Session[T]) snapshot(scope string, docs []T) {
	if s.persist == nil {
		return
	}
	ctx := s.ctx
	go s.persist(ctx, scope, docs)
}

// applyPush maps one push event onto a store operation. Payloads are
// normalized to full documents before they reach the merge path; id-only
// payloads are resolved through the detail endpoint.
func (s *Session[T]) applyPush(ev push.Event) {
	verb := strings.TrimPrefix(ev.Name, s.cfg.Kind+":")
	if verb == ev.Name {
		return
	}
	kind, ok := propagate.KindFromVerb(verb)
	if !ok {
		s.cfg.Logger.Debug("ignoring unknown push verb",
			zap.String("kind", s.cfg.Kind), zap.String("verb", verb))
		return
	}

	// Events stamped with a workspace are filtered against the active
	// scope; unstamped events are scope-agnostic and always applied.
	if ws := payloadWorkspace(ev.Payload); ws != "" && ws != s.scope {
		return
	}

	var ref entity.Ref[T]
	if err := json.Unmarshal(ev.Payload, &ref); err != nil {
		s.cfg.Logger.Warn("dropping malformed push payload",
			zap.String("event", ev.Name), zap.Error(err))
		return
	}

	switch kind {
	case propagate.EventDeleted:
		s.store.Remove(ref.ID())

	case propagate.EventTrashed:
		if doc, inlined := ref.Inline(); inlined {
			s.store.Upsert(doc.WithLifecycle(entity.LifecycleTrashed))
		} else if existing, cached := s.store.Get(ref.ID()); cached {
			s.store.Upsert(existing.WithLifecycle(entity.LifecycleTrashed))
		}
		// An id we have never seen carries nothing to move; the next poll
		// reconciles it.

	case propagate.EventRestored:
		doc, err := s.resolve(ref)
		if err != nil {
			s.cfg.Logger.Warn("failed to resolve push payload",
				zap.String("event", ev.Name), zap.Error(err))
			return
		}
		s.store.Restore(doc)

	default: // created, updated
		doc, err := s.resolve(ref)
		if err != nil {
			s.cfg.Logger.Warn("failed to resolve push payload",
				zap.String("event", ev.Name), zap.Error(err))
			return
		}
		s.store.Upsert(doc)
	}

	if s.table != nil {
		s.table.Dispatch(s.ctx, s.cfg.Kind, kind, ev.Payload)
	}
}

func (s *Session[T]) resolve(ref entity.Ref[T]) (T, error) {
	ctx, cancel := context.WithTimeout(s.ctx, resolveTimeout)
	defer cancel()
	return ref.Resolve(ctx, s.fetch.Get)
}

// payloadWorkspace extracts the optional workspace stamp from an event
// payload. Bare-id payloads have no stamp.
func payloadWorkspace(payload json.RawMessage) string {
	var meta struct {
		Workspace string `json:"workspace"`
	}
	if err := json.Unmarshal(payload, &meta); err != nil {
		return ""
	}
	return meta.Workspace
}
