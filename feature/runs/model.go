package runs

import (
	"time"

	"dash-sync/core/entity"
)

// Run statuses as reported by the server.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Run is the wire document for one test run.
type Run struct {
	ID            string           `json:"_id"`
	TestID        string           `json:"test,omitempty"`
	BatchID       string           `json:"batchTest,omitempty"`
	ScheduleID    string           `json:"schedule,omitempty"`
	PersonaName   string           `json:"personaName,omitempty"`
	Status        string           `json:"status,omitempty"`
	CorrelationID string           `json:"correlationId,omitempty"`
	Workspace     string           `json:"workspace,omitempty"`
	Lifecycle     entity.Lifecycle `json:"lifecycleState,omitempty"`
	StartedAt     *time.Time       `json:"startedAt,omitempty"`
	FinishedAt    *time.Time       `json:"finishedAt,omitempty"`
	CreatedAt     *time.Time       `json:"createdAt,omitempty"`
}

// EntityID returns the server-assigned id.
func (r Run) EntityID() string {
	return r.ID
}

// EntityLifecycle returns the lifecycle state, defaulting to active.
func (r Run) EntityLifecycle() entity.Lifecycle {
	return entity.NormalizeLifecycle(r.Lifecycle)
}

// WithLifecycle returns a copy with the lifecycle replaced.
func (r Run) WithLifecycle(lc entity.Lifecycle) Run {
	r.Lifecycle = lc
	return r
}

// EffectiveTime returns the instant used to order this run.
func (r Run) EffectiveTime() time.Time {
	return entity.EffectiveTime(entity.Times{
		FinishedAt: r.FinishedAt,
		StartedAt:  r.StartedAt,
		CreatedAt:  r.CreatedAt,
	}, r.ID)
}

// Finished reports whether the run reached a terminal status.
func (r Run) Finished() bool {
	return r.Status == StatusPassed || r.Status == StatusFailed
}
