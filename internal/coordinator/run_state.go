package coordinator

import (
	"fmt"

	"github.com/crawlctl/coordinator/internal/domain"
)

// validTransitions is the state table from §4.4. pending/running/paused are
// reachable by operator action; completed is also reachable automatically
// (auto-complete on empty dispatch, see scheduler.go). Terminal states have
// no outgoing transitions except via reset, which bypasses this table
// entirely.
var validTransitions = map[domain.RunStatus][]domain.RunStatus{
	domain.RunPending: {
		domain.RunRunning,
		domain.RunCancelled,
	},
	domain.RunRunning: {
		domain.RunRunning, // idempotent re-start
		domain.RunPaused,
		domain.RunCompleted,
		domain.RunFailed,
		domain.RunCancelled,
	},
	domain.RunPaused: {
		domain.RunRunning,
		domain.RunCancelled,
	},
	domain.RunCompleted: {},
	domain.RunCancelled: {},
	domain.RunFailed:    {},
}

// ValidateTransition reports whether moving from `from` to `to` is allowed.
func ValidateTransition(from, to domain.RunStatus) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("invalid state transition from %s to %s", from, to)
}

// IsTerminal reports whether a run in this status accepts no further
// transitions short of reset.
func IsTerminal(status domain.RunStatus) bool {
	return status == domain.RunCompleted || status == domain.RunCancelled || status == domain.RunFailed
}

// Start validates and applies the pending/running → running transition
// (§4.4: "valid only from pending or (idempotently) running; rejected from
// completed/cancelled/failed with RUN_COMPLETED").
func (r *Run) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if IsTerminal(r.state.Status) {
		return ErrRunCompleted
	}
	if err := ValidateTransition(r.state.Status, domain.RunRunning); err != nil {
		return ErrInvalidRunState
	}
	if r.state.Status != domain.RunRunning {
		t := r.clock.Now()
		r.state.StartedAt = &t
	}
	r.state.Status = domain.RunRunning
	r.persistLocked()
	return nil
}

// Pause requires running (§4.4: "requires running; else RUN_NOT_RUNNING").
func (r *Run) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Status != domain.RunRunning {
		return ErrRunNotRunning
	}
	t := r.clock.Now()
	r.state.PausedAt = &t
	r.state.Status = domain.RunPaused
	r.persistLocked()
	return nil
}

// Resume requires paused (§4.4: "requires paused; else INVALID_RUN_STATE").
func (r *Run) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Status != domain.RunPaused {
		return ErrInvalidRunState
	}
	r.state.PausedAt = nil
	r.state.Status = domain.RunRunning
	r.persistLocked()
	return nil
}

// Cancel is valid from any non-terminal state (§4.4: "always valid except
// from terminal states").
func (r *Run) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if IsTerminal(r.state.Status) {
		return ErrRunCompleted
	}
	t := r.clock.Now()
	r.state.CompletedAt = &t
	r.state.Status = domain.RunCancelled
	r.persistLocked()
	return nil
}

// completeLocked transitions to completed with the caller already holding
// r.mu (invoked from the dispatch path on empty-queue auto-complete, §4.4).
// The caller is responsible for persisting afterward.
func (r *Run) completeLocked(clock Clock) {
	t := clock.Now()
	r.state.CompletedAt = &t
	r.state.Status = domain.RunCompleted
}

// Reset clears Frontier, Visited Index, Domain States and Recent Errors and
// returns the run to pending, from any state (§4.4 "orthogonal" transition;
// §8 "reset returns to pending from any state").
func (r *Run) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frontier.reset()
	r.visited.reset()
	r.domains = map[string]*domain.DomainState{}
	r.recentErrors = nil
	r.fetchTimes = nil

	cfg := r.state.Config
	r.state = domain.NewState(r.state.ID)
	r.state.Config = cfg
	r.persistLocked()
}
