package batches

import (
	"time"

	"dash-sync/core/entity"
)

// Batch is the wire document for one batch test.
type Batch struct {
	ID        string           `json:"_id"`
	Name      string           `json:"name"`
	TestIDs   []string         `json:"tests,omitempty"`
	RunCount  int              `json:"runCount,omitempty"`
	Passed    int              `json:"passed,omitempty"`
	Failed    int              `json:"failed,omitempty"`
	Workspace string           `json:"workspace,omitempty"`
	Lifecycle entity.Lifecycle `json:"lifecycleState,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (b Batch) EntityID() string {
	return b.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (b Batch) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(b.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (b Batch) WithLifecycle(lc entity.Lifecycle) Batch {
	b.Lifecycle = lc
	return b
}
