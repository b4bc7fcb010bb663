// Package store holds the authoritative in-memory copy of each synchronized
// entity collection.
//
// A Store keeps two ordered collections per entity type: the active records
// and the trashed ones. New records are prepended (newest-first convention),
// and an id appears in at most one collection, at most once. Every write
// path goes through the merge policy; no caller mutates cached documents
// directly.
//
// # Flags
//
// Alongside the collections the store tracks a loading flag (true until the
// first successful hydration after creation or reset), the last read error
// (a failed poll retains stale data instead of clearing it), and a staleness
// marker used by cross-entity propagation to request a refresh on next read.
//
// # Keyed Stores
//
// KeyedStores manages lazily created child stores partitioned by a parent
// id, e.g. the run list of each batch test or of each test definition.
package store
