package propagate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKindFromVerb(t *testing.T) {
	for verb, want := range map[string]EventKind{
		"created":  EventCreated,
		"updated":  EventUpdated,
		"deleted":  EventDeleted,
		"trashed":  EventTrashed,
		"restored": EventRestored,
	} {
		got, ok := KindFromVerb(verb)
		require.True(t, ok, verb)
		assert.Equal(t, want, got)
	}

	_, ok := KindFromVerb("renamed")
	assert.False(t, ok)
}

func TestDispatchMatchesSourceAndEvent(t *testing.T) {
	table := NewTable(zap.NewNop())

	var applied []string
	table.Register(Rule{
		Name:   "run-created",
		Source: "run",
		Events: []EventKind{EventCreated},
		Apply: func(_ context.Context, payload json.RawMessage) error {
			applied = append(applied, "run-created:"+string(payload))
			return nil
		},
	})
	table.Register(Rule{
		Name:   "run-any-write",
		Source: "run",
		Events: []EventKind{EventCreated, EventUpdated},
		Apply: func(context.Context, json.RawMessage) error {
			applied = append(applied, "run-any-write")
			return nil
		},
	})
	table.Register(Rule{
		Name:   "test-updated",
		Source: "test",
		Events: []EventKind{EventUpdated},
		Apply: func(context.Context, json.RawMessage) error {
			applied = append(applied, "test-updated")
			return nil
		},
	})

	table.Dispatch(context.Background(), "run", EventCreated, json.RawMessage(`{"_id":"r1"}`))

	assert.Equal(t, []string{`run-created:{"_id":"r1"}`, "run-any-write"}, applied)
}

func TestDispatchNoMatchIsNoop(t *testing.T) {
	table := NewTable(zap.NewNop())

	called := false
	table.Register(Rule{
		Name:   "run-created",
		Source: "run",
		Events: []EventKind{EventCreated},
		Apply: func(context.Context, json.RawMessage) error {
			called = true
			return nil
		},
	})

	table.Dispatch(context.Background(), "run", EventDeleted, nil)
	table.Dispatch(context.Background(), "project", EventCreated, nil)
	assert.False(t, called)
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	table := NewTable(zap.NewNop())

	var applied []string
	table.Register(Rule{
		Name:   "failing",
		Source: "run",
		Events: []EventKind{EventCreated},
		Apply: func(context.Context, json.RawMessage) error {
			return errors.New("boom")
		},
	})
	table.Register(Rule{
		Name:   "following",
		Source: "run",
		Events: []EventKind{EventCreated},
		Apply: func(context.Context, json.RawMessage) error {
			applied = append(applied, "following")
			return nil
		},
	})

	table.Dispatch(context.Background(), "run", EventCreated, nil)
	assert.Equal(t, []string{"following"}, applied)
}

func TestRulesNames(t *testing.T) {
	table := NewTable(zap.NewNop())
	table.Register(Rule{Name: "a"})
	table.Register(Rule{Name: "b"})
	assert.Equal(t, []string{"a", "b"}, table.Rules())
}
