package personas

import (
	"context"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/entity"
	"dash-sync/core/merge"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/session"
	"dash-sync/core/snapshot"
	"dash-sync/core/store"

	"go.uber.org/zap"
)

// Kind is the push event prefix and snapshot key for personas.
const Kind = "persona"

const apiPath = "personas"

// Service owns the persona cache, its sync session, and write operations.
type Service struct {
	client  *api.Client
	col     api.Collection[Persona]
	store   *store.Store[Persona]
	session *session.Session[Persona]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the store with the sticky credentials policy.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Persona](client, apiPath)
	policy := merge.NewPolicy(merge.WithStickyMap(func(p *Persona) *map[string]string {
		return &p.Credentials
	}))
	st := store.New(policy)

	opts := []session.Option[Persona]{session.WithPropagation[Persona](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Persona](snaps, Kind)))
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
		if docs, err := snapshot.Preload[Persona](ctx, s.snaps, Kind, workspace); err == nil {
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
func (s *Service) All() []Persona {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Trashed returns the trashed collection.
func (s *Service) Trashed() []Persona {
	return s.store.Trashed()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Persona] {
	return s.store
}

// MarkStale flags the cache for refresh on next read. Cross-entity
// propagation calls this when a project the personas hang off changes.
func (s *Service) MarkStale() {
	s.store.MarkStale()
}

// LoadDetail fetches one persona through the detail endpoint, which
// returns resolved credential values, and merges it into the cache. The
// merge keeps those resolved values alive through subsequent polls.
func (s *Service) LoadDetail(ctx context.Context, id string) (Persona, error) {
	doc, err := s.col.Get(ctx, id)
	if err != nil {
		return Persona{}, err
	}
	s.store.Upsert(doc)
	// Return the merged view, not the raw response.
	if merged, ok := s.store.Get(id); ok {
		return merged, nil
	}
	return doc, nil
}

// Create posts a new persona and caches the confirmed document.
func (s *Service) Create(ctx context.Context, p Persona) (Persona, error) {
	var created Persona
	if err := s.client.Post(ctx, apiPath, p, &created); err != nil {
		return Persona{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// Update patches a persona and caches the confirmed document.
func (s *Service) Update(ctx context.Context, id string, p Persona) (Persona, error) {
	var updated Persona
	if err := s.client.Patch(ctx, apiPath+"/"+id, p, &updated); err != nil {
		return Persona{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

// Trash moves a persona to the trashed collection after the server
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

// Restore moves a trashed persona back to the active collection.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/restore", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Restore(doc)
	}
	return nil
}

// Delete removes a persona permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, apiPath+"/"+id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}
