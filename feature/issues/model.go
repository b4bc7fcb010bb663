package issues

import (
	"time"

	"dash-sync/core/entity"
)

// Issue is the wire document for one tracked issue.
type Issue struct {
	ID        string           `json:"_id"`
	Title     string           `json:"title"`
	Severity  string           `json:"severity,omitempty"`
	Status    string           `json:"status,omitempty"`
	ProjectID string           `json:"project,omitempty"`
	RunID     string           `json:"run,omitempty"`
	Workspace string           `json:"workspace,omitempty"`
	Lifecycle entity.Lifecycle `json:"lifecycleState,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (i Issue) EntityID() string {
	return i.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (i Issue) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(i.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (i Issue) WithLifecycle(lc entity.Lifecycle) Issue {
	i.Lifecycle = lc
	return i
}
