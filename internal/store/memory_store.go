package store

import (
	"context"
	"sync"

	"github.com/crawlctl/coordinator/internal/domain"
)

// MemoryStore is an in-process Store, used as a test double; the serve
// command always uses the Redis-backed store. It satisfies the same atomicity contract trivially: Save replaces the
// whole entry under one mutex.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]domain.Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]domain.Snapshot{}}
}

func (m *MemoryStore) Load(_ context.Context, runID string) (domain.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.data[runID]
	return snap, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[snapshot.RunID] = snapshot
	return nil
}
