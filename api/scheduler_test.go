package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportScheduler_StartRunsOnceImmediately(t *testing.T) {
	// GIVEN: A loaded scenario and an hourly scheduler
	h := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.loadNegativeNetScenario(ctx))
	rs := NewReportScheduler(h, time.Hour)

	// WHEN: Starting and stopping before the first tick
	rs.Start()
	rs.Stop()

	// THEN: Exactly the start-up run is recorded
	runs, err := h.Store.ReportRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 5, runs[0].Months)
	assert.Equal(t, "5800.00", runs[0].LatestTotal.StringFixed(2))
}

func TestReportScheduler_DisabledWithoutInterval(t *testing.T) {
	h := setupTestHandler(t)
	rs := NewReportScheduler(h, 0)

	assert.False(t, rs.Enabled)
	rs.Start()
	rs.Stop()

	runs, err := h.Store.ReportRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReportScheduler_EmptyStoreCompletes(t *testing.T) {
	h := setupTestHandler(t)

	run, err := NewReportScheduler(h, time.Hour).RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, 0, run.Months)
	assert.True(t, run.LatestTotal.IsZero())
}

func TestReportScheduler_CancelledContext(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()
	rs := NewReportScheduler(h, time.Hour)

	run, err := rs.RunNow(ctx)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = rs.RunNow(cancelled)
	assert.Error(t, err)

	runs, err := h.Store.ReportRuns(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	assert.Equal(t, run.ID, runs[len(runs)-1].ID, "earlier run is untouched")
}

func TestReportScheduler_RestartAfterStop(t *testing.T) {
	// GIVEN: A fast scheduler that has been started and stopped once
	h := setupTestHandler(t)
	ctx := context.Background()
	rs := NewReportScheduler(h, 20*time.Millisecond)
	rs.Start()
	rs.Stop()
	runs, err := h.Store.ReportRuns(ctx, 0)
	require.NoError(t, err)
	afterFirst := len(runs)

	// WHEN: Starting it again
	rs.Start()
	defer rs.Stop()

	// THEN: Ticks keep producing runs, not just the start-up one
	require.Eventually(t, func() bool {
		runs, err := h.Store.ReportRuns(ctx, 0)
		return err == nil && len(runs) >= afterFirst+2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReportScheduler_NextRunServedWithRuns(t *testing.T) {
	h, router := setupTestRouter(t)
	rs := NewReportScheduler(h, time.Hour)
	rs.Start()

	resp := decode[ReportRunsResponse](t, do(t, router, http.MethodGet, "/api/reports/runs", nil))

	require.NotNil(t, resp.NextRunAt)
	next, err := time.Parse(timeLayout, *resp.NextRunAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Minute)

	rs.Stop()
	_, running := rs.GetNextRunTime()
	assert.False(t, running)
	assert.Nil(t, decode[ReportRunsResponse](t, do(t, router, http.MethodGet, "/api/reports/runs", nil)).NextRunAt)
}
