package issues

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

// Kind is the push event prefix and snapshot key for issues.
const Kind = "issue"

const apiPath = "issues"

// Service owns the issue cache, its sync session, and write operations.
type Service struct {
	client  *api.Client
	col     api.Collection[Issue]
	store   *store.Store[Issue]
	session *session.Session[Issue]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the store and session.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Issue](client, apiPath)
	st := store.New[Issue](nil)

	opts := []session.Option[Issue]{session.WithPropagation[Issue](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Issue](snaps, Kind)))
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
		if docs, err := snapshot.Preload[Issue](ctx, s.snaps, Kind, workspace); err == nil {
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

// All returns the active collection, newest first.
func (s *Service) All() []Issue {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Trashed returns the trashed collection.
func (s *Service) Trashed() []Issue {
	return s.store.Trashed()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Issue] {
	return s.store
}

// Create posts a new issue and caches the confirmed document.
func (s *Service) Create(ctx context.Context, i Issue) (Issue, error) {
	var created Issue
	if err := s.client.Post(ctx, apiPath, i, &created); err != nil {
		return Issue{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// Update patches an issue and caches the confirmed document.
func (s *Service) Update(ctx context.Context, id string, i Issue) (Issue, error) {
	var updated Issue
	if err := s.client.Patch(ctx, apiPath+"/"+id, i, &updated); err != nil {
		return Issue{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

// Trash moves an issue to the trashed collection after the server
// confirms.
func (s *Service) Trash(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/trash", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Upsert(doc.WithLifecycle(entity.LifecycleTrashed))
	}
	return nil
}

// Restore moves a trashed issue back to the active collection.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/restore", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Restore(doc)
	}
	return nil
}

// Delete removes an issue permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, apiPath+"/"+id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}
