package propagate

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// EventKind names the lifecycle verbs a rule can match.
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventUpdated  EventKind = "updated"
	EventDeleted  EventKind = "deleted"
	EventTrashed  EventKind = "trashed"
	EventRestored EventKind = "restored"
)

// KindFromVerb maps a push event verb to an EventKind.
func KindFromVerb(verb string) (EventKind, bool) {
	switch EventKind(verb) {
	case EventCreated, EventUpdated, EventDeleted, EventTrashed, EventRestored:
		return EventKind(verb), true
	}
	return "", false
}

// Rule states that events of the given kinds on the source entity type
// trigger Apply against the raw event payload.
type Rule struct {
	// Name identifies the rule in logs and the status endpoint.
	Name string
	// Source is the entity kind the rule listens to, e.g. "run".
	Source string
	// Events are the verbs the rule matches.
	Events []EventKind
	// Apply performs the dependent cache effect.
	Apply func(ctx context.Context, payload json.RawMessage) error
}

func (r Rule) matches(source string, event EventKind) bool {
	if r.Source != source {
		return false
	}
	for _, e := range r.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Table is the static rule registry.
type Table struct {
	mu     sync.RWMutex
	rules  []Rule
	logger *zap.Logger
}

// NewTable creates an empty table.
func NewTable(logger *zap.Logger) *Table {
	return &Table{logger: logger}
}

// Register adds a rule. Registration happens once at wiring time.
func (t *Table) Register(r Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, r)
}

// Rules returns the registered rule names, for the status endpoint.
func (t *Table) Rules() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.rules))
	for _, r := range t.rules {
		names = append(names, r.Name)
	}
	return names
}

// Dispatch applies every rule matching the source entity kind and event.
// Rule errors are logged and do not stop later rules: propagation is best
// effort, the dependent cache self-heals on its next poll.
func (t *Table) Dispatch(ctx context.Context, source string, event EventKind, payload json.RawMessage) {
	t.mu.RLock()
	rules := make([]Rule, len(t.rules))
	copy(rules, t.rules)
	t.mu.RUnlock()

	for _, r := range rules {
		if !r.matches(source, event) {
			continue
		}
		if err := r.Apply(ctx, payload); err != nil {
			t.logger.Warn("propagation rule failed",
				zap.String("rule", r.Name),
				zap.String("source", source),
				zap.String("event", string(event)),
				zap.Error(err))
		}
	}
}
