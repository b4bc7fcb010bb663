// Package propagate routes cross-entity cache effects.
//
// Some entity documents denormalize fields from other entity types: a test
// run carries a persona-name snapshot, a batch test aggregates its run
// list. When the source entity changes, the dependent cache must be patched
// or refreshed. Rather than a generic pub/sub graph, the rules live in one
// explicit, statically registered table, which keeps the blast radius of
// any single event bounded and auditable.
//
// Sessions dispatch into the table after applying a push event to their own
// store; rule failures are logged and never interrupt the session.
package propagate
