// Package schedules synchronizes the test schedule collection.
//
// Schedules are low churn, so the session is event-only: no poll timer,
// push events and staleness-driven refreshes keep the cache current.
// Recurring schedules are written as compiled recurrence rules; one-shot
// schedules carry an absolute timestamp validated as strictly future
// before any network call.
package schedules
