package coordinator

import (
	"fmt"
	"time"

	"github.com/crawlctl/coordinator/internal/domain"
)

// staleDomainAge and stalledRunAge implement §4.5's maintenance tick
// thresholds: evict idle domains after an hour, warn on a run with no
// activity for half an hour.
const (
	staleDomainAge = time.Hour
	stalledRunAge  = 30 * time.Minute
)

// maintenanceTick performs the §4.5 "Maintenance tick" steps (a)-(d) for
// this run and returns its id and post-tick queue size.
func (r *Run) maintenanceTick() (id string, queueSize int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	// (a) Clear backoffUntil where it has elapsed.
	for _, ds := range r.domains {
		if !ds.BackoffUntil.IsZero() && !ds.BackoffUntil.After(now) {
			ds.BackoffUntil = time.Time{}
		}
	}

	// (b) Evict Domain States idle for over an hour with no requests. A
	// domain with RequestCount > 0 always has a non-zero LastFetchAt (both
	// are set together on dispatch), so "no requests" can never be paired
	// with a non-zero LastFetchAt — staleness for a never-dispatched domain
	// is instead measured from CreatedAt, the one timestamp such a domain
	// does have.
	for host, ds := range r.domains {
		if ds.RequestCount == 0 && !ds.CreatedAt.IsZero() && now.Sub(ds.CreatedAt) > staleDomainAge {
			delete(r.domains, host)
		}
	}

	// (c) Stalled-run warning, status unchanged.
	if r.state.Status == domain.RunRunning && !r.state.LastActivityAt.IsZero() && now.Sub(r.state.LastActivityAt) > stalledRunAge {
		r.state.Error = fmt.Sprintf("run stalled: no activity since %s", r.state.LastActivityAt.Format(time.RFC3339))
	}

	// (d) Persist.
	r.persistLocked()

	return r.state.ID, r.frontier.size()
}
