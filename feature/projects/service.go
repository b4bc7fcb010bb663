package projects

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

// Kind is the push event prefix and snapshot key for projects.
const Kind = "project"

const apiPath = "projects"

// Service owns the project cache, its sync session, and write operations.
type Service struct {
	client  *api.Client
	col     api.Collection[Project]
	store   *store.Store[Project]
	session *session.Session[Project]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the store and session. snaps may be nil when the local
// snapshot database is unavailable.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Project](client, apiPath)
	st := store.New[Project](nil)

	opts := []session.Option[Project]{session.WithPropagation[Project](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Project](snaps, Kind)))
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
		if docs, err := snapshot.Preload[Project](ctx, s.snaps, Kind, workspace); err == nil {
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
func (s *Service) All() []Project {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Trashed returns the trashed collection.
func (s *Service) Trashed() []Project {
	return s.store.Trashed()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Project] {
	return s.store
}

// Create posts a new project and caches the confirmed document.
func (s *Service) Create(ctx context.Context, p Project) (Project, error) {
	var created Project
	if err := s.client.Post(ctx, apiPath, p, &created); err != nil {
		return Project{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// Update patches a project and caches the confirmed document.
func (s *Service) Update(ctx context.Context, id string, p Project) (Project, error) {
	var updated Project
	if err := s.client.Patch(ctx, apiPath+"/"+id, p, &updated); err != nil {
		return Project{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

// Trash moves a project to the trashed collection after the server
// confirms. No optimistic mutation: a rejected trash must never be visible.
func (s *Service) Trash(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/trash", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Upsert(doc.WithLifecycle(entity.LifecycleTrashed))
	}
	return nil
}

// Restore moves a trashed project back to the active collection.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/restore", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Restore(doc)
	}
	return nil
}

// Delete removes a project permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, apiPath+"/"+id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}
