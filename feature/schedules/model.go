package schedules

import (
	"time"

	"dash-sync/core/entity"
)

// Schedule is the wire document for one test schedule. Recurring schedules
// carry a rule; one-shot schedules carry an absolute time.
type Schedule struct {
	ID           string           `json:"_id"`
	TestID       string           `json:"test,omitempty"`
	PersonaID    string           `json:"persona,omitempty"`
	Rule         string           `json:"recurrenceRule,omitempty"`
	ScheduledFor *time.Time       `json:"scheduledFor,omitempty"`
	Active       bool             `json:"active,omitempty"`
	Workspace    string           `json:"workspace,omitempty"`
	Lifecycle    entity.Lifecycle `json:"lifecycleState,omitempty"`
	CreatedAt    *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time       `json:"updatedAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (s Schedule) EntityID() string {
	return s.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (s Schedule) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(s.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (s Schedule) WithLifecycle(lc entity.Lifecycle) Schedule {
	s.Lifecycle = lc
	return s
}

// Recurring reports whether the schedule repeats.
func (s Schedule) Recurring() bool {
	return s.Rule != ""
}
