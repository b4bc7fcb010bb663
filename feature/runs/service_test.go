package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/propagate"
	"dash-sync/core/push"

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

	return NewService(client, push.NewFake(), propagate.NewTable(zap.NewNop()), nil, 0, zap.NewNop())
}

func TestStartConfirmsOptimisticRun(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/runs/start", r.URL.Path)

		var req struct {
			TestID        string `json:"testId"`
			PersonaID     string `json:"personaId"`
			CorrelationID string `json:"correlationId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "t1", req.TestID)
		assert.Equal(t, "a1", req.PersonaID)
		assert.NotEmpty(t, req.CorrelationID)

		json.NewEncoder(w).Encode(Run{
			ID:            "r1",
			TestID:        req.TestID,
			Status:        StatusQueued,
			CorrelationID: req.CorrelationID,
		})
	})

	created, err := svc.Start(context.Background(), "t1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "r1", created.ID)

	// The provisional record is gone, only the confirmed run remains
	docs := svc.Store().All()
	require.Len(t, docs, 1)
	assert.Equal(t, "r1", docs[0].ID)

	forTest := svc.ForTest("t1")
	require.Len(t, forTest, 1)
	assert.Equal(t, "r1", forTest[0].ID)
}

func TestStartRejectionRemovesProvisional(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"test is already running"}`))
	})

	_, err := svc.Start(context.Background(), "t1", "a1")
	require.Error(t, err)

	assert.Empty(t, svc.Store().All())
	assert.Empty(t, svc.ForTest("t1"))
}

func TestStartInsertsProvisionalImmediately(t *testing.T) {
	release := make(chan struct{})
	observed := make(chan int, 1)

	var svc *Service
	svc = newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		// While the server is still thinking, the provisional run shows
		observed <- svc.Store().Len()
		<-release
		json.NewEncoder(w).Encode(Run{ID: "r1", TestID: "t1"})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Start(context.Background(), "t1", "a1")
		assert.NoError(t, err)
	}()

	assert.Equal(t, 1, <-observed)
	provisional := svc.Store().All()
	if len(provisional) == 1 {
		assert.True(t, strings.HasPrefix(provisional[0].ID, provisionalPrefix))
		assert.Equal(t, StatusQueued, provisional[0].Status)
	}
	close(release)
	<-done
}

func TestAbsorbMergesIntoTestList(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	svc.Absorb(Run{ID: "r1", TestID: "t1"})
	svc.Absorb(Run{ID: "r2", TestID: "t2"})
	svc.Absorb(Run{ID: "r3"}) // no test, global cache only

	assert.Equal(t, 3, svc.Store().Len())
	assert.Len(t, svc.ForTest("t1"), 1)
	assert.Len(t, svc.ForTest("t2"), 1)
}

func TestAllSortsNewestFirst(t *testing.T) {
	svc := newServiceAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	early := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	mid := time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)

	svc.Absorb(Run{ID: "r1", StartedAt: &early})
	svc.Absorb(Run{ID: "r2", FinishedAt: &late})
	svc.Absorb(Run{ID: "r3", CreatedAt: &mid})

	got := svc.All()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"r2", "r3", "r1"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestRunFinished(t *testing.T) {
	assert.False(t, Run{Status: StatusQueued}.Finished())
	assert.False(t, Run{Status: StatusRunning}.Finished())
	assert.True(t, Run{Status: StatusPassed}.Finished())
	assert.True(t, Run{Status: StatusFailed}.Finished())
}
