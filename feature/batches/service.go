package batches

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
	"dash-sync/feature/runs"

	"go.uber.org/zap"
)

// Kind is the push event prefix and snapshot key for batch tests.
const Kind = "batchtest"

const apiPath = "batchtests"

// Service owns the batch cache and per-batch keyed run lists.
type Service struct {
	client  *api.Client
	col     api.Collection[Batch]
	store   *store.Store[Batch]
	byBatch *store.KeyedStores[runs.Run]
	session *session.Session[Batch]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the stores and session.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Batch](client, apiPath)
	st := store.New[Batch](nil)

	opts := []session.Option[Batch]{session.WithPropagation[Batch](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Batch](snaps, Kind)))
	}
	sess := session.New(session.Config{Kind: Kind, PollInterval: poll, Logger: logger}, st, col, source, opts...)

	return &Service{
		client:  client,
		col:     col,
		store:   st,
		byBatch: store.NewKeyed[runs.Run](nil),
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
		if docs, err := snapshot.Preload[Batch](ctx, s.snaps, Kind, workspace); err == nil {
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

// SetWorkspace switches the active workspace scope and drops the keyed
// run lists with it.
func (s *Service) SetWorkspace(workspace string) {
	s.byBatch.Reset()
	s.session.SetScope(workspace)
}

// SetVisible gates polling on host view visibility.
func (s *Service) SetVisible(visible bool) {
	s.session.SetVisible(visible)
}

// All returns the active collection, newest first.
func (s *Service) All() []Batch {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Trashed returns the trashed collection.
func (s *Service) Trashed() []Batch {
	return s.store.Trashed()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Batch] {
	return s.store
}

// RunsFor returns the cached run list of one batch.
func (s *Service) RunsFor(batchID string) []runs.Run {
	return s.byBatch.For(batchID).All()
}

// MergeRun merges a run into its batch's keyed run list. Propagation
// calls this for every run event carrying a batch id.
func (s *Service) MergeRun(run runs.Run) {
	if run.BatchID == "" {
		return
	}
	s.byBatch.For(run.BatchID).Upsert(run)
}

// RefreshBatch re-fetches one batch document for fresh aggregates and
// merges it into the cache.
func (s *Service) RefreshBatch(ctx context.Context, id string) error {
	doc, err := s.col.Get(ctx, id)
	if err != nil {
		return err
	}
	s.store.Upsert(doc)
	return nil
}

// Create posts a new batch and caches the confirmed document.
func (s *Service) Create(ctx context.Context, b Batch) (Batch, error) {
	var created Batch
	if err := s.client.Post(ctx, apiPath, b, &created); err != nil {
		return Batch{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// Trash moves a batch to the trashed collection after the server
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

// Restore moves a trashed batch back to the active collection.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/restore", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		s.store.Restore(doc)
	}
	return nil
}

// Delete removes a batch permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, apiPath+"/"+id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}
