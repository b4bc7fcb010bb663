package projects

import (
	"time"

	"dash-sync/core/entity"
)

// Project is the wire document for one project.
type Project struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Workspace   string           `json:"workspace,omitempty"`
	Lifecycle   entity.Lifecycle `json:"lifecycleState,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (p Project) EntityID() string {
	return p.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (p Project) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(p.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (p Project) WithLifecycle(lc entity.Lifecycle) Project {
	p.Lifecycle = lc
	return p
}
