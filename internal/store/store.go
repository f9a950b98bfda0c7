// Package store persists the five coordinator snapshot slots (pendingQueue,
// visitedUrls, domainStates, runState, recentErrors) atomically, per §4.5's
// durability contract: "if the operation returns success, its effect
// survives a crash."
package store

import (
	"context"

	"github.com/crawlctl/coordinator/internal/domain"
)

// Store is the persistence contract internal/coordinator depends on.
type Store interface {
	Load(ctx context.Context, runID string) (domain.Snapshot, bool, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}
