// Package runs synchronizes the test run collection.
//
// Runs are ordered by an effective timestamp rather than a single date
// field, because a queued run has no finish time and legacy documents
// predate createdAt stamping. Beside the global collection the feature
// keeps per-test run lists in keyed child stores, fed by cross-entity
// propagation.
//
// Starting a run inserts a provisional record before the server confirms.
// This is the one optimistic write in the engine: a brief incorrect state
// on failure is accepted in exchange for instant feedback.
package runs
