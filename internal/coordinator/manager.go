package coordinator

import (
	"context"
	"sync"

	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/logger"
	"github.com/crawlctl/coordinator/internal/metrics"
)

// Store is the persistence contract a Manager hydrates from and snapshots
// to (§4.5). internal/store provides Redis-backed and in-memory
// implementations.
type Store interface {
	Load(ctx context.Context, runID string) (domain.Snapshot, bool, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}

// Manager owns every Run this process currently serves. Runs are
// independent of one another (§5 "Across runs ... no shared mutable state
// between runs"); only the map of run ids to *Run is itself guarded.
type Manager struct {
	mu      sync.Mutex
	runs    map[string]*Run
	store   Store
	clock   Clock
	log     logger.Interface
	metrics *metrics.Metrics
}

// NewManager constructs a Manager backed by store, using clock for all
// time-dependent decisions (production callers pass SystemClock{}).
func NewManager(store Store, clock Clock, log logger.Interface) *Manager {
	return &Manager{
		runs:  map[string]*Run{},
		store: store,
		clock: clock,
		log:   log,
	}
}

// Get returns the Run for id, hydrating it from the store on first touch
// (§4.5 "In-memory cache ... No operation proceeds before hydration
// completes"). A run not previously seeded or started is created implicitly
// in `pending` status (§3 "Run State ... Created implicitly on first touch
// of a run").
func (m *Manager) Get(ctx context.Context, id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if run, ok := m.runs[id]; ok {
		return run, nil
	}

	persist := func(snap domain.Snapshot) {
		start := m.clock.Now()
		err := m.store.Save(ctx, snap)
		if m.metrics != nil {
			result := "success"
			if err != nil {
				result = "failure"
			}
			m.metrics.SnapshotWritesTotal.WithLabelValues(id, result).Inc()
			m.metrics.SnapshotWriteDuration.WithLabelValues(id).Observe(m.clock.Now().Sub(start).Seconds())
		}
		if err != nil {
			m.log.WithRunID(id).WithError(err).Error("persist run snapshot failed")
		}
	}

	run := newRun(id, m.clock, persist)

	snap, found, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if found {
		run.hydrate(snap)
	}

	m.runs[id] = run
	return run, nil
}

// SetMetrics attaches met so subsequent snapshot writes are observed.
// Optional: a Manager with no metrics attached simply skips instrumentation.
func (m *Manager) SetMetrics(met *metrics.Metrics) {
	m.metrics = met
}

// Remove drops a run from the in-memory cache without touching its
// persisted snapshot (used only by tests; production runs are long-lived
// for the process lifetime).
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}

// TickRun runs the §4.5 maintenance tick for a single run (used by the
// /on-cron handler when the caller names a specific run rather than
// relying on the process-wide scheduler).
func (m *Manager) TickRun(ctx context.Context, id string) (int, error) {
	run, err := m.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	_, size := run.maintenanceTick()
	return size, nil
}

// MaintenanceTick runs the §4.5 "Maintenance tick" over every currently
// in-memory run and returns the queue size of each, keyed by run id.
func (m *Manager) MaintenanceTick() map[string]int {
	m.mu.Lock()
	runs := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, r)
	}
	m.mu.Unlock()

	sizes := make(map[string]int, len(runs))
	for _, r := range runs {
		id, size := r.maintenanceTick()
		sizes[id] = size
	}
	return sizes
}
