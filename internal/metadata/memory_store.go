package metadata

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store double for tests and single-instance
// development, keyed by (RunID, URL).
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]PageRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]PageRecord{}}
}

func (m *MemoryStore) Upsert(_ context.Context, record PageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[documentID(record)] = record
	return nil
}

// Get returns the stored record for (runID, url), for test assertions.
func (m *MemoryStore) Get(runID, url string) (PageRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[runID+":"+url]
	return rec, ok
}
