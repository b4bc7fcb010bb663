package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/recurrence"
	"dash-sync/core/session"
	"dash-sync/core/snapshot"
	"dash-sync/core/store"

	"go.uber.org/zap"
)

// Kind is the push event prefix and snapshot key for schedules.
const Kind = "schedule"

const apiPath = "testschedules"

// ErrMissingSelection marks a schedule write without a test or persona.
// Caught before any network call.
var ErrMissingSelection = errors.New("schedule requires a test and a persona")

// Service owns the schedule cache and the recurrence write operations.
type Service struct {
	client  *api.Client
	col     api.Collection[Schedule]
	store   *store.Store[Schedule]
	session *session.Session[Schedule]
	snaps   *snapshot.Store
	logger  *zap.Logger
}

// NewService wires the store and an event-only session (no poll timer).
func NewService(client *api.Client, source push.Source, table *propagate.Table, snaps *snapshot.Store, logger *zap.Logger) *Service {
	col := api.NewCollection[Schedule](client, apiPath)
	st := store.New[Schedule](nil)

	opts := []session.Option[Schedule]{session.WithPropagation[Schedule](table)}
	if snaps != nil {
		opts = append(opts, session.WithPersist(snapshot.Persist[Schedule](snaps, Kind)))
	}
	sess := session.New(session.Config{Kind: Kind, Logger: logger}, st, col, source, opts...)

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
		if docs, err := snapshot.Preload[Schedule](ctx, s.snaps, Kind, workspace); err == nil {
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

// SetVisible gates polling on host view visibility. Event-only sessions
// still track it so a visible transition triggers a refresh.
func (s *Service) SetVisible(visible bool) {
	s.session.SetVisible(visible)
}

// All returns the active collection, newest first.
func (s *Service) All() []Schedule {
	s.session.RefreshIfStale()
	return s.store.All()
}

// Store exposes the underlying cache for status reporting.
func (s *Service) Store() *store.Store[Schedule] {
	return s.store
}

// MarkStale flags the cache for refresh on next read. Propagation calls
// this when a test the schedules reference changes.
func (s *Service) MarkStale() {
	s.store.MarkStale()
}

// RefreshSchedule re-fetches one schedule, used by propagation when the
// schedule fires and its lastRun bookkeeping changes server-side.
func (s *Service) RefreshSchedule(ctx context.Context, id string) error {
	doc, err := s.col.Get(ctx, id)
	if err != nil {
		return err
	}
	s.store.Upsert(doc)
	return nil
}

type recurringRequest struct {
	TestID    string `json:"testId"`
	PersonaID string `json:"personaId"`
	Rule      string `json:"recurrenceRule"`
}

type recurringPatch struct {
	Rule       string `json:"recurrenceRule"`
	AnchorDate string `json:"anchorDate,omitempty"`
}

type oneShotRequest struct {
	TestID       string `json:"testId"`
	PersonaID    string `json:"personaId"`
	ScheduledFor string `json:"scheduledFor"`
}

// CreateRecurring compiles the selection into a rule and posts it.
func (s *Service) CreateRecurring(ctx context.Context, testID, personaID string, date time.Time, hour, minute int, freq recurrence.Frequency) (Schedule, error) {
	if testID == "" || personaID == "" {
		return Schedule{}, ErrMissingSelection
	}
	rule, err := recurrence.Compile(date, hour, minute, freq)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid schedule selection: %w", err)
	}
	var created Schedule
	if err := s.client.Post(ctx, apiPath+"/recurring", recurringRequest{
		TestID:    testID,
		PersonaID: personaID,
		Rule:      rule,
	}, &created); err != nil {
		return Schedule{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// UpdateRecurring recompiles the rule for an existing schedule.
func (s *Service) UpdateRecurring(ctx context.Context, id string, date time.Time, hour, minute int, freq recurrence.Frequency) (Schedule, error) {
	rule, err := recurrence.Compile(date, hour, minute, freq)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid schedule selection: %w", err)
	}
	var updated Schedule
	if err := s.client.Patch(ctx, apiPath+"/recurring/"+id, recurringPatch{
		Rule:       rule,
		AnchorDate: date.UTC().Format(time.RFC3339),
	}, &updated); err != nil {
		return Schedule{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

// CreateOneShot schedules a single run at an absolute time. The time must
// be strictly in the future; the compiler is not involved.
func (s *Service) CreateOneShot(ctx context.Context, testID, personaID string, at time.Time) (Schedule, error) {
	if testID == "" || personaID == "" {
		return Schedule{}, ErrMissingSelection
	}
	if err := recurrence.ValidateOneShot(at, time.Now()); err != nil {
		return Schedule{}, err
	}
	var created Schedule
	if err := s.client.Post(ctx, apiPath+"/schedule", oneShotRequest{
		TestID:       testID,
		PersonaID:    personaID,
		ScheduledFor: at.UTC().Format(time.RFC3339),
	}, &created); err != nil {
		return Schedule{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

// Selection decompiles a cached schedule's rule for the editor. The
// round-trip law guarantees the editor shows exactly what was compiled.
func (s *Service) Selection(id string) (recurrence.Selection, error) {
	doc, ok := s.store.Get(id)
	if !ok {
		return recurrence.Selection{}, fmt.Errorf("schedule %s not cached", id)
	}
	if !doc.Recurring() {
		return recurrence.Selection{}, fmt.Errorf("schedule %s is one-shot", id)
	}
	return recurrence.Decompile(doc.Rule)
}

// Delete removes a schedule permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, apiPath+"/"+id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}
