package coordinator

import (
	"sync"
	"time"

	"github.com/crawlctl/coordinator/internal/domain"
)

// Run is one coordinator instance's worth of state: Frontier, Visited
// Index, Domain States, Run State and Recent Errors Ring, all scoped to a
// single run id (§2 "One coordinator instance exists per run"). Every
// exported method takes r.mu for its full duration — §5's single-writer
// invariant — and never releases it between reading state and persisting
// the resulting mutation.
type Run struct {
	mu sync.Mutex

	clock Clock

	frontier     *frontier
	visited      *visitedIndex
	domains      map[string]*domain.DomainState
	recentErrors []domain.RecentError

	// fetchTimes backs the global sliding-window rate limit (§4.3).
	fetchTimes []time.Time

	state *domain.State

	// persist is invoked with r.mu already held, at the tail of every
	// public mutation, per §4.5's "atomic snapshot-put ... before
	// responding". It must not itself attempt to reacquire r.mu.
	persist func(snapshot domain.Snapshot)
}

// newRun constructs a pending Run with default configuration. Used both for
// brand-new runs and as the hydration target before a stored snapshot (if
// any) is applied.
func newRun(id string, clock Clock, persist func(domain.Snapshot)) *Run {
	return &Run{
		clock:    clock,
		frontier: newFrontier(),
		visited:  newVisitedIndex(),
		domains:  map[string]*domain.DomainState{},
		state:    domain.NewState(id),
		persist:  persist,
	}
}

// hydrate overlays a persisted snapshot onto a freshly constructed Run.
// Tolerant of a nil/zero-value snapshot slot — §4.5 "Hydration is
// idempotent and must tolerate missing slots (treat as empty)".
func (r *Run) hydrate(snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.PendingQueue != nil {
		r.frontier.removeAll(snap.PendingQueue)
	}
	if snap.VisitedUrls != nil {
		r.visited.load(snap.VisitedUrls)
	}
	if snap.DomainStates != nil {
		r.domains = snap.DomainStates
	}
	if snap.RunState != nil {
		r.state = snap.RunState
	}
	if snap.RecentErrors != nil {
		r.recentErrors = snap.RecentErrors
	}
}

// snapshotLocked builds the persistence unit; caller must already hold r.mu.
func (r *Run) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		RunID:        r.state.ID,
		PendingQueue: append([]domain.QueuedURL(nil), r.frontier.items...),
		VisitedUrls:  r.visited.all(),
		DomainStates: r.domains,
		RunState:     r.state,
		RecentErrors: r.recentErrors,
	}
}

// persistLocked calls the configured persist hook; caller must hold r.mu.
func (r *Run) persistLocked() {
	if r.persist != nil {
		r.persist(r.snapshotLocked())
	}
}

// Snapshot returns a copy of the current Run State for read-only callers
// (/stats, /status); it takes r.mu itself.
func (r *Run) Snapshot() domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.state
}

// QueueSize returns the current Frontier length.
func (r *Run) QueueSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frontier.size()
}

// VisitedCount returns the current Visited Index size.
func (r *Run) VisitedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visited.size()
}

// DomainStates returns a copy of the tracked per-domain state, for /stats'
// domainBreakdown (capped to 50 entries by the caller in internal/api).
func (r *Run) DomainStates() map[string]domain.DomainState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]domain.DomainState, len(r.domains))
	for k, v := range r.domains {
		out[k] = *v
	}
	return out
}

// DomainsInBackoff returns how many tracked domains are currently past
// their politeness window (BackoffUntil in the future), for metrics.
func (r *Run) DomainsInBackoff() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	n := 0
	for _, ds := range r.domains {
		if ds.BackoffUntil.After(now) {
			n++
		}
	}
	return n
}

// RecentErrors returns a copy of the Recent Errors Ring.
func (r *Run) RecentErrors() []domain.RecentError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RecentError(nil), r.recentErrors...)
}

// Configure applies a per-section merge (§9 "Configuration merge
// semantics") to the run's configuration.
func (r *Run) Configure(upd domain.ConfigUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Config.Merge(upd)
	r.persistLocked()
}

func (r *Run) domainState(host string) *domain.DomainState {
	ds, ok := r.domains[host]
	if !ok {
		ds = &domain.DomainState{Domain: host, CreatedAt: r.clock.Now()}
		r.domains[host] = ds
	}
	return ds
}
