package coordinator

import (
	"math"
	"math/rand"
	"time"

	"github.com/crawlctl/coordinator/internal/domain"
)

// RequestWork implements the §4.3 dispatch algorithm. It is the one
// operation that both reads and mutates Frontier/Visited/Domain state in a
// single pass, which is why the whole body runs under r.mu without
// releasing it — the "choosing a batch" and "persisting the resulting
// state" suspension points (§5) must not be separated by a yield.
func (r *Run) RequestWork(batchSize int) domain.WorkBatch {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.state.Config
	r.state.LastActivityAt = r.clock.Now()
	empty := domain.WorkBatch{URLs: []domain.WorkItem{}, QueueSize: r.frontier.size(), Config: cfg.WorkerConfig()}

	if r.state.Status != domain.RunRunning {
		return empty
	}

	if cfg.CrawlBehavior.MaxPagesPerRun > 0 && r.state.Stats.URLsFetched >= int64(cfg.CrawlBehavior.MaxPagesPerRun) {
		r.completeLocked(r.clock)
		r.persistLocked()
		return empty
	}

	if cfg.RateLimit.GlobalRateLimitPerMinute > 0 && r.globalRateLimited() {
		return empty
	}

	effectiveBatch := batchSize
	if effectiveBatch <= 0 {
		effectiveBatch = cfg.CrawlBehavior.DefaultBatchSize
	}
	if effectiveBatch > domain.MaxBatchSize {
		effectiveBatch = domain.MaxBatchSize
	}

	now := r.clock.Now()
	ordered := r.frontier.ordered()

	batch := make([]domain.QueuedURL, 0, effectiveBatch)
	remaining := make([]domain.QueuedURL, 0, len(ordered))
	domainsInBatch := map[string]struct{}{}

	for _, item := range ordered {
		if len(batch) == effectiveBatch {
			remaining = append(remaining, item)
			continue
		}

		ds := r.domainState(item.Domain)
		if ds.BackoffUntil.After(now) {
			remaining = append(remaining, item)
			continue
		}
		if _, alreadyInBatch := domainsInBatch[item.Domain]; alreadyInBatch {
			remaining = append(remaining, item)
			continue
		}
		if !ds.LastFetchAt.IsZero() && now.Sub(ds.LastFetchAt) < r.effectiveMinDelay(cfg) {
			remaining = append(remaining, item)
			continue
		}

		batch = append(batch, item)
		domainsInBatch[item.Domain] = struct{}{}
		r.visited.insert(hashURL(item.URL))
		ds.LastFetchAt = now
		ds.RequestCount++
		if cfg.RateLimit.GlobalRateLimitPerMinute > 0 {
			r.recordFetch(now)
		}
	}

	r.frontier.removeAll(remaining)

	if len(batch) == 0 && len(remaining) == 0 && r.state.Status == domain.RunRunning {
		r.completeLocked(r.clock)
	}

	r.persistLocked()

	items := make([]domain.WorkItem, len(batch))
	for i, q := range batch {
		items[i] = domain.WorkItem{URL: q.URL, Depth: q.Depth, Priority: q.Priority, RetryCount: q.RetryCount}
	}

	return domain.WorkBatch{URLs: items, QueueSize: len(remaining), Config: cfg.WorkerConfig()}
}

// effectiveMinDelay applies jitter to minDomainDelayMs per §4.3 "Jitter":
// minDomainDelayMs · (1 + U(−jitterFactor, +jitterFactor)).
func (r *Run) effectiveMinDelay(cfg *domain.Config) time.Duration {
	base := float64(cfg.RateLimit.MinDomainDelayMs)
	jf := cfg.RateLimit.JitterFactor
	if jf <= 0 {
		return time.Duration(base) * time.Millisecond
	}
	factor := 1 + (rand.Float64()*2-1)*jf
	return time.Duration(base*factor) * time.Millisecond
}

// recordFetch appends to the global sliding-window rate limiter.
func (r *Run) recordFetch(now time.Time) {
	r.fetchTimes = append(r.fetchTimes, now)
}

// globalRateLimited reports whether the 60-second sliding window is full
// (§4.3 "Global rate limit"), pruning expired entries as it goes.
func (r *Run) globalRateLimited() bool {
	now := r.clock.Now()
	cutoff := now.Add(-60 * time.Second)

	pruned := r.fetchTimes[:0]
	for _, t := range r.fetchTimes {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}
	r.fetchTimes = pruned

	return len(r.fetchTimes) >= r.state.Config.RateLimit.GlobalRateLimitPerMinute
}

// ReportResult implements the §4.3 result-report algorithm: domain backoff
// bookkeeping on failure, rolling-average stats on success, discovered-URL
// admission with propagated depth, and progress recomputation.
func (r *Run) ReportResult(report domain.ResultReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	cfg := r.state.Config
	host, err := urlHost(report.URL)
	if err != nil {
		host = ""
	}
	ds := r.domainState(host)

	if report.Failed() {
		ds.ErrorCount++
		delay := float64(cfg.RateLimit.MinDomainDelayMs) * math.Pow(cfg.RateLimit.ErrorBackoffMultiplier, float64(ds.ErrorCount))
		if delay > float64(cfg.RateLimit.MaxDomainDelayMs) {
			delay = float64(cfg.RateLimit.MaxDomainDelayMs)
		}
		ds.BackoffUntil = now.Add(time.Duration(delay) * time.Millisecond)

		r.state.Stats.URLsFailed++
		r.appendRecentError(domain.RecentError{
			URL:        report.URL,
			Domain:     host,
			StatusCode: report.Status,
			Message:    report.Error,
			Timestamp:  now,
		})
	} else {
		ds.ErrorCount = 0
		ds.BackoffUntil = time.Time{}
		ds.SuccessCount++
		ds.TotalResponseTimeMs += report.ResponseTimeMs
		ds.BytesDownloaded += report.ContentSize

		r.state.Stats.URLsFetched++
		r.state.Stats.BytesDownloaded += report.ContentSize

		n := r.state.Stats.URLsFetched
		if n > 0 {
			r.state.Stats.AvgResponseTime = (r.state.Stats.AvgResponseTime*float64(n-1) + float64(report.ResponseTimeMs)) / float64(n)
		}
		if r.state.StartedAt != nil {
			elapsedMin := now.Sub(*r.state.StartedAt).Minutes()
			if elapsedMin > 0 {
				r.state.Stats.PagesPerMinute = float64(n) / elapsedMin
			}
		}
	}

	if cfg.CrawlBehavior.FollowLinks {
		for _, discovered := range report.DiscoveredUrls {
			discoveredHost, hostErr := urlHost(discovered)
			if hostErr == nil && cfg.CrawlBehavior.SameDomainOnly && discoveredHost != host {
				continue
			}
			r.admitLocked(discovered, report.Depth+1, -(report.Depth + 1))
		}
	}

	r.recomputeProgressLocked()
	r.state.LastActivityAt = now
	r.persistLocked()
}

func (r *Run) appendRecentError(e domain.RecentError) {
	r.recentErrors = append(r.recentErrors, e)
	if len(r.recentErrors) > domain.MaxRecentErrors {
		r.recentErrors = r.recentErrors[len(r.recentErrors)-domain.MaxRecentErrors:]
	}
}

// recomputeProgressLocked implements §4.3's progress recomputation; caller
// must already hold r.mu.
func (r *Run) recomputeProgressLocked() {
	fetched := r.state.Stats.URLsFetched + r.state.Stats.URLsFailed
	queued := r.state.Stats.URLsQueued
	if queued < 1 {
		queued = 1
	}
	r.state.Progress.Percentage = int(math.Round(100 * float64(fetched) / float64(queued)))

	if r.state.Stats.PagesPerMinute > 0 {
		r.state.Progress.EstimatedSecondsRemain = int(math.Round(60 * float64(r.frontier.size()) / r.state.Stats.PagesPerMinute))
	} else {
		r.state.Progress.EstimatedSecondsRemain = -1
	}
}
