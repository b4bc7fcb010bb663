// Package tests synchronizes the scenario test collection.
//
// Test documents denormalize the persona name they run against, so the
// cache is flagged stale when a persona changes and re-fetched on next
// read.
package tests
