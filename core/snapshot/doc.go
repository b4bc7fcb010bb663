// Package snapshot persists synchronized collections to the local SQLite
// database so a restarting engine can seed its caches before the first
// fetch completes.
//
// Each row stores one document as raw JSON, keyed by entity kind,
// workspace, and document id. A snapshot is advisory: seeded data renders
// immediately but the store still reports loading until the live fetch
// replaces it, so a stale snapshot can never mask fresh server state.
package snapshot
