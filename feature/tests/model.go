package tests

import (
	"time"

	"dash-sync/core/entity"
)

// Test is the wire document for one scenario test.
type Test struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	ProjectID   string           `json:"project,omitempty"`
	PersonaID   string           `json:"persona,omitempty"`
	PersonaName string           `json:"personaName,omitempty"`
	Scenario    string           `json:"scenario,omitempty"`
	Workspace   string           `json:"workspace,omitempty"`
	Lifecycle   entity.Lifecycle `json:"lifecycleState,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (t Test) EntityID() string {
	return t.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (t Test) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(t.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (t Test) WithLifecycle(lc entity.Lifecycle) Test {
	t.Lifecycle = lc
	return t
}
