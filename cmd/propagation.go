package cmd

import (
	"context"
	"encoding/json"

	"dash-sync/core/entity"
	"dash-sync/core/propagate"
	"dash-sync/feature/batches"
	"dash-sync/feature/notifications"
	"dash-sync/feature/personas"
	"dash-sync/feature/projects"
	"dash-sync/feature/runs"
	"dash-sync/feature/schedules"
	"dash-sync/feature/tests"
)

// registerPropagation binds the static cross-entity rule table. The rules
// live here, after every feature is constructed, so no feature package
// needs to import another's service.
func registerPropagation(
	table *propagate.Table,
	runsSvc *runs.Service,
	batchesSvc *batches.Service,
	schedulesSvc *schedules.Service,
	notificationsSvc *notifications.Service,
	testsSvc *tests.Service,
	personasSvc *personas.Service,
) {
	resolveRun := func(ctx context.Context, payload json.RawMessage) (runs.Run, error) {
		var ref entity.Ref[runs.Run]
		if err := json.Unmarshal(payload, &ref); err != nil {
			return runs.Run{}, err
		}
		return runsSvc.Resolve(ctx, ref)
	}

	// A run event merges the run into its test's keyed list.
	table.Register(propagate.Rule{
		Name:   "run-into-test-list",
		Source: runs.Kind,
		Events: []propagate.EventKind{propagate.EventCreated, propagate.EventUpdated},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			run, err := resolveRun(ctx, payload)
			if err != nil {
				return err
			}
			runsSvc.Absorb(run)
			return nil
		},
	})

	// A run belonging to a batch merges into the batch's run list, and the
	// batch document is re-fetched for fresh aggregates.
	table.Register(propagate.Rule{
		Name:   "run-into-batch",
		Source: runs.Kind,
		Events: []propagate.EventKind{propagate.EventCreated, propagate.EventUpdated},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			run, err := resolveRun(ctx, payload)
			if err != nil {
				return err
			}
			if run.BatchID == "" {
				return nil
			}
			batchesSvc.MergeRun(run)
			return batchesSvc.RefreshBatch(ctx, run.BatchID)
		},
	})

	// A schedule firing produces a run carrying the schedule id; the
	// schedule document is re-fetched for its lastRun bookkeeping.
	table.Register(propagate.Rule{
		Name:   "schedule-fired",
		Source: runs.Kind,
		Events: []propagate.EventKind{propagate.EventCreated},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			run, err := resolveRun(ctx, payload)
			if err != nil {
				return err
			}
			if run.ScheduleID == "" {
				return nil
			}
			return schedulesSvc.RefreshSchedule(ctx, run.ScheduleID)
		},
	})

	// The server emits a notification when a run finishes; mark the feed
	// stale so the next read re-fetches it.
	table.Register(propagate.Rule{
		Name:   "run-finished-notifications",
		Source: runs.Kind,
		Events: []propagate.EventKind{propagate.EventUpdated},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			run, err := resolveRun(ctx, payload)
			if err != nil {
				return err
			}
			if run.Finished() {
				notificationsSvc.MarkStale()
			}
			return nil
		},
	})

	// Test documents denormalize the persona name.
	table.Register(propagate.Rule{
		Name:   "persona-into-tests",
		Source: personas.Kind,
		Events: []propagate.EventKind{propagate.EventUpdated, propagate.EventTrashed},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			testsSvc.MarkStale()
			return nil
		},
	})

	// Schedule rows show the test name.
	table.Register(propagate.Rule{
		Name:   "test-into-schedules",
		Source: tests.Kind,
		Events: []propagate.EventKind{propagate.EventUpdated, propagate.EventTrashed},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			schedulesSvc.MarkStale()
			return nil
		},
	})

	// Dropdowns elsewhere select tests and personas by project; eventual
	// re-fetch on next read, no push required.
	table.Register(propagate.Rule{
		Name:   "project-into-dependents",
		Source: projects.Kind,
		Events: []propagate.EventKind{propagate.EventTrashed, propagate.EventDeleted},
		Apply: func(ctx context.Context, payload json.RawMessage) error {
			testsSvc.MarkStale()
			personasSvc.MarkStale()
			return nil
		},
	})
}
