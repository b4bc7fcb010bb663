package schedules

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServiceAgainst(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	return NewService(client, push.NewFake(), propagate.NewTable(zap.NewNop()), nil, zap.NewNop())
}

func TestCreateRecurringCompilesRule(t *testing.T) {
	var posted struct {
		TestID    string `json:"testId"`
		PersonaID string `json:"personaId"`
		Rule      string `json:"recurrenceRule"`
	}
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/testschedules/recurring", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		json.NewEncoder(w).Encode(Schedule{ID: "s1", Rule: posted.Rule})
	})

	// 2026-03-18 is a Wednesday
	anchor := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateRecurring(context.Background(), "t1", "a1", anchor, 14, 30, recurrence.FrequencyWeekly)
	require.NoError(t, err)

	assert.Equal(t, "t1", posted.TestID)
	assert.Equal(t, "a1", posted.PersonaID)
	assert.Equal(t, "30 14 * * 3", posted.Rule)

	// The confirmed schedule lands in the cache
	cached, ok := svc.Store().Get("s1")
	require.True(t, ok)
	assert.Equal(t, created.Rule, cached.Rule)
}

func TestCreateRecurringRequiresSelection(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	anchor := time.Now().UTC()
	_, err := svc.CreateRecurring(context.Background(), "", "a1", anchor, 9, 0, recurrence.FrequencyDaily)
	assert.ErrorIs(t, err, ErrMissingSelection)

	_, err = svc.CreateRecurring(context.Background(), "t1", "", anchor, 9, 0, recurrence.FrequencyDaily)
	assert.ErrorIs(t, err, ErrMissingSelection)
}

func TestCreateRecurringRejectsBadSelection(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := svc.CreateRecurring(context.Background(), "t1", "a1", time.Now(), 25, 0, recurrence.FrequencyDaily)
	assert.Error(t, err)
}

func TestUpdateRecurringSendsAnchorDate(t *testing.T) {
	var patched struct {
		Rule       string `json:"recurrenceRule"`
		AnchorDate string `json:"anchorDate"`
	}
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/testschedules/recurring/s1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		json.NewEncoder(w).Encode(Schedule{ID: "s1", Rule: patched.Rule})
	})

	anchor := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	_, err := svc.UpdateRecurring(context.Background(), "s1", anchor, 6, 15, recurrence.FrequencyMonthly)
	require.NoError(t, err)

	assert.Equal(t, "15 6 20 * *", patched.Rule)
	assert.Equal(t, "2026-03-20T00:00:00Z", patched.AnchorDate)
}

func TestCreateOneShotValidatesFuture(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := svc.CreateOneShot(context.Background(), "t1", "a1", time.Now().Add(-time.Hour))
	assert.ErrorIs(t, err, recurrence.ErrNotInFuture)
}

func TestCreateOneShotPostsAbsoluteTime(t *testing.T) {
	var posted struct {
		TestID       string `json:"testId"`
		PersonaID    string `json:"personaId"`
		ScheduledFor string `json:"scheduledFor"`
	}
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/testschedules/schedule", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		json.NewEncoder(w).Encode(Schedule{ID: "s1"})
	})

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	_, err := svc.CreateOneShot(context.Background(), "t1", "a1", at)
	require.NoError(t, err)

	assert.Equal(t, at.Format(time.RFC3339), posted.ScheduledFor)
}

func TestSelectionDecompilesCachedRule(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	svc.Store().Upsert(Schedule{ID: "s1", Rule: "30 14 * * 3"})

	sel, err := svc.Selection("s1")
	require.NoError(t, err)
	assert.Equal(t, 14, sel.Hour)
	assert.Equal(t, 30, sel.Minute)
	assert.Equal(t, recurrence.FrequencyWeekly, sel.Frequency)
	require.NotNil(t, sel.DayOfWeek)
	assert.Equal(t, 3, *sel.DayOfWeek)
}

func TestSelectionErrors(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// Unknown schedule
	_, err := svc.Selection("missing")
	assert.Error(t, err)

	// One-shot schedules have no rule to decompile
	at := time.Now().Add(time.Hour)
	svc.Store().Upsert(Schedule{ID: "s1", ScheduledFor: &at})
	_, err = svc.Selection("s1")
	assert.Error(t, err)
}

func TestDeleteRemovesFromCache(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	svc.Store().Upsert(Schedule{ID: "s1", Rule: "0 9 * * *"})
	require.NoError(t, svc.Delete(context.Background(), "s1"))

	_, ok := svc.Store().Get("s1")
	assert.False(t, ok)
}
