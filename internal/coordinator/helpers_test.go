package coordinator_test

import (
	"context"
	"sync"

	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/logger"
)

func ctx() context.Context { return context.Background() }

func noopLogger() logger.Interface { return logger.NewNop() }

// fakeStore is a hand-written in-memory Store double, in the style of the
// teacher's own lightweight fakes (e.g. frontier_repository_test.go's mocked
// expectations) rather than a generated mock.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]domain.Snapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]domain.Snapshot{}}
}

func (f *fakeStore) Load(_ context.Context, runID string) (domain.Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.data[runID]
	return snap, ok, nil
}

func (f *fakeStore) Save(_ context.Context, snap domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[snap.RunID] = snap
	return nil
}
