package coordinator_test

import (
	"testing"
	"time"

	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager returns a Manager backed by an in-memory fake store and a
// FixedClock, so scenarios can advance time deterministically instead of
// sleeping (§8's scenarios reference "a virtual 1000 ms").
func newTestManager(t *testing.T) (*coordinator.Manager, *coordinator.FixedClock) {
	t.Helper()
	clock := coordinator.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newFakeStore()
	return coordinator.NewManager(store, clock, noopLogger()), clock
}

func TestEmptyQueueDispatchCompletesRun(t *testing.T) {
	mgr, _ := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-1")
	require.NoError(t, err)

	require.NoError(t, run.Start())

	batch := run.RequestWork(5)
	assert.Empty(t, batch.URLs)
	assert.Equal(t, 0, batch.QueueSize)
	assert.Equal(t, domain.RunCompleted, run.Snapshot().Status)
}

func TestBasicAdmitAndDispatch(t *testing.T) {
	mgr, _ := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-2")
	require.NoError(t, err)

	r1 := run.Admit("https://a.test/p1", 0, 0)
	r2 := run.Admit("https://B.test/P1/", 0, 0)
	r3 := run.Admit("https://a.test/p1#x", 0, 0)

	assert.True(t, r1.Admitted)
	assert.True(t, r2.Admitted)
	assert.False(t, r3.Admitted)
	assert.Equal(t, domain.RejectAlreadyQueued, r3.Reason)
	assert.Equal(t, 2, run.QueueSize())

	require.NoError(t, run.Start())
	batch := run.RequestWork(10)
	assert.Len(t, batch.URLs, 2)
	assert.Equal(t, 0, batch.QueueSize)

	seen := map[string]bool{}
	for _, u := range batch.URLs {
		seen[u.URL] = true
	}
	assert.True(t, seen["https://a.test/p1"])
	assert.True(t, seen["https://b.test/P1"])
}

func TestPolitenessThenStatsAfterSuccess(t *testing.T) {
	mgr, clock := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-3")
	require.NoError(t, err)

	run.Admit("https://a.test/p1", 0, 0)
	run.Admit("https://b.test/p1", 0, 0)
	require.NoError(t, run.Start())

	first := run.RequestWork(10)
	require.Len(t, first.URLs, 2)

	again := run.RequestWork(10)
	assert.Empty(t, again.URLs, "both domains were just fetched")

	clock.Advance(1000 * time.Millisecond)

	for _, item := range first.URLs {
		run.ReportResult(domain.ResultReport{
			URL:            item.URL,
			Depth:          item.Depth,
			Status:         200,
			ContentSize:    2048,
			ResponseTimeMs: 100,
			FetchedAt:      clock.Now().UnixMilli(),
		})
	}

	snap := run.Snapshot()
	assert.Equal(t, int64(2), snap.Stats.URLsFetched)
	assert.Equal(t, int64(4096), snap.Stats.BytesDownloaded)
	assert.InDelta(t, 100, snap.Stats.AvgResponseTime, 0.01)
}

func TestBackoffGrowsWithConsecutiveErrors(t *testing.T) {
	mgr, clock := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-4")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		run.Admit("https://x.test/p"+string(rune('a'+i)), 0, 0)
	}
	require.NoError(t, run.Start())

	batch := run.RequestWork(1)
	require.Len(t, batch.URLs, 1)
	first := batch.URLs[0]

	run.ReportResult(domain.ResultReport{URL: first.URL, Depth: first.Depth, Status: 500, FetchedAt: clock.Now().UnixMilli()})

	clock.Advance(1999 * time.Millisecond)
	none := run.RequestWork(1)
	assert.Empty(t, none.URLs, "backoff of 2000ms has not elapsed yet")

	clock.Advance(2 * time.Millisecond)
	second := run.RequestWork(1)
	require.Len(t, second.URLs, 1)

	run.ReportResult(domain.ResultReport{URL: second.URLs[0].URL, Depth: second.URLs[0].Depth, Status: 500, FetchedAt: clock.Now().UnixMilli()})

	states := run.DomainStates()
	ds, ok := states["x.test"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, ds.BackoffUntil.Sub(clock.Now()), 3999*time.Millisecond)
}

func TestDiscoveryPropagatesDepth(t *testing.T) {
	mgr, clock := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-5")
	require.NoError(t, err)

	run.Configure(domain.ConfigUpdate{CrawlBehavior: &domain.CrawlBehaviorConfig{
		MaxDepth: 1, DefaultBatchSize: 10, RequestTimeoutMs: 30000, RetryCount: 3,
		RespectRobotsTxt: true, FollowRedirects: true, MaxRedirects: 5,
		UserAgent: "CloudflareCrawler/1.0", FollowLinks: true, SameDomainOnly: true,
	}})

	run.Admit("https://a.test/", 0, 0)
	require.NoError(t, run.Start())

	batch := run.RequestWork(10)
	require.Len(t, batch.URLs, 1)
	item := batch.URLs[0]
	assert.Equal(t, 0, item.Depth)

	run.ReportResult(domain.ResultReport{
		URL:            item.URL,
		Depth:          item.Depth,
		Status:         200,
		DiscoveredUrls: []string{"https://a.test/x", "https://other.test/y"},
		FetchedAt:      clock.Now().UnixMilli(),
	})

	assert.Equal(t, 1, run.QueueSize(), "only the same-domain discovery is admitted")

	clock.Advance(2 * time.Second)
	next := run.RequestWork(10)
	require.Len(t, next.URLs, 1)
	child := next.URLs[0]
	assert.Equal(t, "https://a.test/x", child.URL)
	assert.Equal(t, 1, child.Depth)

	run.ReportResult(domain.ResultReport{
		URL:            child.URL,
		Depth:          child.Depth,
		Status:         200,
		DiscoveredUrls: []string{"https://a.test/x/child"},
		FetchedAt:      clock.Now().UnixMilli(),
	})

	assert.Equal(t, 0, run.QueueSize(), "depth 2 exceeds maxDepth 1")
}

func TestPauseResumeKeepsStartedAt(t *testing.T) {
	mgr, _ := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-6")
	require.NoError(t, err)

	run.Admit("https://a.test/p1", 0, 0)
	require.NoError(t, run.Start())
	startedAt := run.Snapshot().StartedAt

	require.NoError(t, run.Pause())
	empty := run.RequestWork(10)
	assert.Empty(t, empty.URLs)

	require.NoError(t, run.Resume())
	batch := run.RequestWork(10)
	assert.Len(t, batch.URLs, 1)
	assert.Equal(t, startedAt, run.Snapshot().StartedAt)
}

func TestStateTransitionErrors(t *testing.T) {
	mgr, _ := newTestManager(t)
	run, err := mgr.Get(ctx(), "run-7")
	require.NoError(t, err)

	assert.ErrorIs(t, run.Pause(), coordinator.ErrRunNotRunning)
	assert.ErrorIs(t, run.Resume(), coordinator.ErrInvalidRunState)

	require.NoError(t, run.Start())
	require.NoError(t, run.Cancel())
	assert.ErrorIs(t, run.Start(), coordinator.ErrRunCompleted)

	run.Reset()
	assert.Equal(t, domain.RunPending, run.Snapshot().Status)
}
