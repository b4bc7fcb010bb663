// Package archive uploads periodic cache snapshots to object storage.
//
// A snapshot is the full dump of every synchronized collection for the
// active workspace, gzip-compressed JSON, keyed by workspace and capture
// time. Archives give operators a way to diff cache state across incidents
// without attaching a debugger to a live engine.
//
// Archival is best effort. Upload failures are logged and the next tick
// tries again; the sync engine never blocks on storage.
package archive
