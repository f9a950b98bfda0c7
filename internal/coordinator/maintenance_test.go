package coordinator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlctl/coordinator/internal/domain"
)

func TestMaintenanceTickEvictsNeverDispatchedStaleDomain(t *testing.T) {
	mgr, clock := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-stale")
	require.NoError(t, err)

	// A report for a host never itself sent out via RequestWork still
	// touches domainState (e.g. a redirect target), leaving a DomainState
	// with RequestCount == 0 — exactly the "discovered but never
	// dispatched" case step (b) is meant to clean up.
	require.NoError(t, run.Start())
	run.ReportResult(domain.ResultReport{URL: "https://idle.test/p1", Status: 200, FetchedAt: clock.Now().UnixMilli()})
	require.Contains(t, run.DomainStates(), "idle.test")
	require.EqualValues(t, 0, run.DomainStates()["idle.test"].RequestCount)

	clock.Advance(61 * time.Minute)
	mgr.MaintenanceTick()

	assert.NotContains(t, run.DomainStates(), "idle.test")
}

func TestMaintenanceTickKeepsDispatchedDomain(t *testing.T) {
	mgr, clock := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-active")
	require.NoError(t, err)

	require.True(t, run.Admit("https://active.test/p1", 0, 0).Admitted)
	require.NoError(t, run.Start())
	batch := run.RequestWork(10)
	require.Len(t, batch.URLs, 1)

	clock.Advance(61 * time.Minute)
	mgr.MaintenanceTick()

	assert.Contains(t, run.DomainStates(), "active.test")
}
