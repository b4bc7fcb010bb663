package personas

import (
	"time"

	"dash-sync/core/entity"
)

// Persona is the wire document for one persona: a model configuration the
// dashboard runs tests against.
type Persona struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Provider    string            `json:"provider,omitempty"`
	Model       string            `json:"model,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
	Workspace   string            `json:"workspace,omitempty"`
	Lifecycle   entity.Lifecycle  `json:"lifecycleState,omitempty"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (p Persona) EntityID() string {
	return p.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (p Persona) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(p.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (p Persona) WithLifecycle(lc entity.Lifecycle) Persona {
	p.Lifecycle = lc
	return p
}
