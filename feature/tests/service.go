package tests

import (
	"context"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/entity"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/session"
	"dash-sync/core/snapshot"
	"dash-sync/core/store"

	"go.uber.org/zap"
)

// Kind is the push event prefix and snapshot key for tests.
const Kind = "test"

const apiPath = "tests"

// Service owns the test cache, its sync session, and write operations.
type Service struct {
	client  *api.Client
	col     api.Collection[Test]
	store   *store.Store[Test]
	session *session.Session[Test]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the store and session.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Test](client, apiPath)
	st := store.New[Test](nil)

	opts := []session.Option[Test]{session.WithPropagation[Test](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Test](snaps, Kind)))
	}
	sess := session.New(session.Config{Kind: Kind, PollInterval: poll, Logger: logger}, st, col, source, opts...)

	return &Service{
		client:  client,
		col:     col,
		store:   st,
		session: sess,
		snaps:   snaps,
		logger:  logger,
	}
}

// StartSync seeds the cache from the last snapshot and activates the
// session for a workspace.
func (s *Service) StartSync(workspace string) {
	if s.snaps != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if docs, err := snapshot.Preload[Test](ctx, s.snaps, Kind, workspace); err == nil {
			s.session.Preload(docs)
		}
		cancel()
	}
	s.session.Start(workspace)
}

// StopSync tears the session down.
func (s *Service) StopSync() {
	s.session.Stop()
}

// SetWorkspace switches the active workspace scope.
func (s *Service) SetWorkspace(workspace string) {
	s.session.SetScope(workspace)
}

// SetVisible gates polling on host view visibility.
func (s *Service) SetVisible(visible bool) {
	s.session.SetVisible(visible)
}

// All returns the active collection, newest first. A stale flag set by
// propagation triggers a refresh here.
func (s *Service) All() []Test {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Trashed returns the trashed collection.
func (s *Service) Trashed() []Test {
	return s.store.Trashed()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Test] {
	return s.store
}

// MarkStale flags the cache for refresh on next read. Propagation calls
// this when a persona or project the tests denormalize changes.
func (s *Service) MarkStale() {
	s.store.MarkStale()
}

// Create posts a new test and caches the confirmed document.
func (s *Service) Create(ctx context.Context, t Test) (Test, error) {
	var created Test
	if err := s.client.Post(ctx, apiPath, t, &created); err != nil {
		return Test{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// Update patches a test and caches the confirmed document.
func (s *Service) Update(ctx context.Context, id string, t Test) (Test, error) {
	var updated Test
	if err := s.client.Patch(ctx, apiPath+"/"+id, t, &updated); err != nil {
		return Test{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

// Trash moves a test to the trashed collection after the server confirms.
func (s *Service) Trash(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/trash", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Upsert(doc.WithLifecycle(entity.LifecycleTrashed))
	}
	return nil
}

// Restore moves a trashed test back to the active collection.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/restore", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Restore(doc)
	}
	return nil
}

// Delete removes a test permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, apiPath+"/"+id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}
