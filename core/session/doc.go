// Package session orchestrates the three update channels of one entity
// type (initial fetch, visibility-gated poll, push events) into a single
// cache.
//
// # Model
//
// Each session owns a worker goroutine fed by a message queue. Fetch
// completions, poll ticks, push events, visibility changes, and scope
// switches are all messages; the worker processes one fully before the
// next, so a burst of push events can never cause re-entrant mutation.
// No ordering is assumed between channels: a push update may arrive before
// or after a concurrently in-flight poll response for the same entity, and
// both paths converge because every write goes through the merge policy.
//
// # Lifecycle
//
// idle -> hydrating (first fetch replaces the store wholesale) -> steady
// (poll merges entity-by-entity). While the host view is hidden the poll
// timer is stopped; becoming visible fires one immediate fetch before the
// interval resumes, bounding staleness to time-since-hidden. A workspace
// scope switch resets the store before any new fetch, and a fetch
// completion stamped with the old scope is discarded, never applied.
//
// Read failures set the store error and keep stale data. Push subscription
// recovery is the transport's job; the session only reacts to the
// Connected pseudo-event by re-subscribing to the same event names.
package session
