package notifications

import (
	"time"

	"dash-sync/core/entity"
)

// Notification is the wire document for one feed entry.
type Notification struct {
	ID        string           `json:"_id"`
	Type      string           `json:"type,omitempty"`
	Message   string           `json:"message,omitempty"`
	RunID     string           `json:"run,omitempty"`
	Read      bool             `json:"read,omitempty"`
	Workspace string           `json:"workspace,omitempty"`
	Lifecycle entity.Lifecycle `json:"lifecycleState,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (n Notification) EntityID() string {
	return n.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (n Notification) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(n.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (n Notification) WithLifecycle(lc entity.Lifecycle) Notification {
	n.Lifecycle = lc
	return n
}
