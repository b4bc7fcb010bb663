// Package entity defines the generic contract for server-owned records
// cached by the sync engine.
//
// Every synchronized record has a stable server-assigned id, a workspace
// partition, and a lifecycle state (active, trashed, deleted). Feature
// packages define the concrete document types and implement the Entity
// interface so that the generic store, merge, and session machinery can
// operate on them without reflection.
//
// # Entity Interface
//
//	type Entity[T any] interface {
//	    EntityID() string
//	    EntityLifecycle() Lifecycle
//	    WithLifecycle(Lifecycle) T
//	}
//
// The recurring type parameter lets WithLifecycle return the concrete type,
// which the store needs to move records between the active and trashed
// collections.
//
// # References
//
// Push payloads may carry either a bare id or a full document for the same
// logical entity. Ref normalizes that ambiguity at the session boundary:
// downstream code only ever sees fully inlined documents.
package entity
