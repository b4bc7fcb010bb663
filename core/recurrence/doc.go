// Package recurrence compiles UI schedule selections into canonical
// five-field cron rules and back.
//
// Rules are always expressed in UTC as "minute hour day-of-month month
// day-of-week". Month is always a wildcard (no yearly schedules), and at
// most one of day-of-month / day-of-week is concrete:
//
//	daily:   "30 14 * * *"
//	weekly:  "30 14 * * 3"   (day-of-week of the anchor date, 0=Sunday)
//	monthly: "30 14 31 * *"  (day-of-month of the anchor date)
//
// A rule with both day fields concrete is ambiguous and rejected. Compile
// and Decompile are exact inverses for every rule Compile produces.
//
// Monthly rules anchored on days 29-31 are emitted as-is against shorter
// months; the engine performs no clamping or skip logic. Callers own that
// decision.
//
// One-shot (non-recurring) runs use an absolute timestamp instead of a
// rule; ValidateOneShot rejects times not strictly in the future before any
// network call is made.
package recurrence
