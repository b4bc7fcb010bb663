package runs

import (
	"context"
	"sort"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/entity"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/session"
	"dash-sync/core/snapshot"
	"dash-sync/core/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind is the push event prefix and snapshot key for runs.
const Kind = "run"

const apiPath = "runs"

// provisionalPrefix marks optimistic inserts awaiting server confirmation.
const provisionalPrefix = "pending-"

// Service owns the run cache, per-test keyed run lists, and the start
// operation.
type Service struct {
	client  *api.Client
	col     api.Collection[Run]
	store   *store.Store[Run]
	byTest  *store.KeyedStores[Run]
	session *session.Session[Run]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the stores and session.
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, poll time.Duration, logger *zap.Logger) *Service {
	col := api.NewCollection[Run](client, apiPath)
	st := store.New[Run](nil)

	opts := []session.Option[Run]{session.WithPropagation[Run](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Run](snaps, Kind)))
	}
	sess := session.New(session.Config{Kind: Kind, PollInterval: poll, Logger: logger}, st, col, source, opts...)

	return &Service{
		client:  client,
		col:     col,
		store:   st,
		byTest:  store.NewKeyed[Run](nil),
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
		if docs, err := snapshot.Preload[Run](ctx, s.snaps, Kind, workspace); err == nil {
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

// SetWorkspace switches the active workspace scope. The keyed per-test
// lists are dropped with the global cache: no run from the old scope may
// survive the switch.
func (s *Service) SetWorkspace(workspace string) {
	s.byTest.Reset()
	s.session.SetScope(workspace)
}

// SetVisible gates polling on host view visibility.
func (s *Service) SetVisible(visible bool) {
	s.session.SetVisible(visible)
}

// All returns the active collection ordered newest-first by effective
// timestamp.
func (s *Service) All() []Run {
	s.session.RefreshIfStale()
	return sortByTime(s.store.All())
}

// ForTest returns the cached run list of one test, newest first.
func (s *Service) ForTest(testID string) []Run {
	return sortByTime(s.byTest.For(testID).All())
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Run] {
	return s.store
}

// Resolve normalizes a run reference to a full document, fetching by id
// when the payload was id-only.
func (s *Service) Resolve(ctx context.Context, ref entity.Ref[Run]) (Run, error) {
	return ref.Resolve(ctx, s.col.Get)
}

// Absorb merges a run into the global cache and its test's keyed list.
// Propagation calls this when a schedule fires or a batch reports a run.
func (s *Service) Absorb(run Run) {
	s.store.Upsert(run)
	s.mergeIntoTest(run)
}

func (s *Service) mergeIntoTest(run Run) {
	if run.TestID == "" {
		return
	}
	s.byTest.For(run.TestID).Upsert(run)
}

type startRequest struct {
	TestID        string `json:"testId"`
	PersonaID     string `json:"personaId"`
	CorrelationID string `json:"correlationId"`
}

// Start launches a run. A provisional record with a client-generated
// correlation id is inserted immediately; the server's confirmed document
// replaces it, and a rejected start removes it again.
func (s *Service) Start(ctx context.Context, testID, personaID string) (Run, error) {
	correlation := uuid.NewString()
	now := time.Now().UTC()
	provisional := Run{
		ID:            provisionalPrefix + correlation,
		TestID:        testID,
		Status:        StatusQueued,
		CorrelationID: correlation,
		StartedAt:     &now,
	}
	s.store.Upsert(provisional)
	s.mergeIntoTest(provisional)

	var created Run
	err := s.client.Post(ctx, apiPath+"/start", startRequest{
		TestID:        testID,
		PersonaID:     personaID,
		CorrelationID: correlation,
	}, &created)

	s.store.Remove(provisional.ID)
	if testID != "" {
		s.byTest.For(testID).Remove(provisional.ID)
	}
	if err != nil {
		s.logger.Warn("run start rejected", zap.String("test", testID), zap.Error(err))
		return Run{}, err
	}

	s.Absorb(created)
	return created, nil
}

func sortByTime(list []Run) []Run {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EffectiveTime().After(list[j].EffectiveTime())
	})
	return list
}
