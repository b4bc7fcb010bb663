// Package batches synchronizes the batch test collection.
//
// A batch document aggregates run counts over its member tests, and the
// feature keeps a keyed run-list store per batch. Both are fed by
// cross-entity propagation from run events: the run merges into the
// batch's list and the batch document itself is re-fetched for fresh
// aggregates.
package batches
