package notifications

import (
	"context"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/session"
	"dash-sync/core/snapshot"
	"dash-sync/core/store"

	"go.uber.org/zap"
)

// Kind is the push event prefix and snapshot key for notifications.
const Kind = "notification"

const apiPath = "notifications"

// Service owns the notification cache and the read-state operation.
type Service struct {
	client  *api.Client
	col     api.Collection[Notification]
	store   *store.Store[Notification]
	session *session.Session[Notification]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the store and session.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Notification](client, apiPath)
	st := store.New[Notification](nil)

	opts := []session.Option[Notification]{session.WithPropagation[Notification](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Notification](snaps, Kind)))
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
		if docs, err := snapshot.Preload[Notification](ctx, s.snaps, Kind, workspace); err == nil {
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

// All returns the feed, newest first. A stale flag set when a run
// finishes triggers a refresh here.
func (s *Service) All() []Notification {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Notification] {
	return s.store
}

// MarkStale flags the feed for refresh on next read.
func (s *Service) MarkStale() {
	s.store.MarkStale()
}

// MarkRead flips a notification's read flag after the server confirms.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, apiPath+"/"+id+"/read", nil, nil); err != nil {
		return err
	}
	if doc, ok := s.store.Get(id); ok {
		doc.Read = true
		s.store.Upsert(doc)
	}
	return nil
}
