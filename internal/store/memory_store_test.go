package store_test

import (
	"context"
	"testing"

	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	_, found, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	snap := domain.Snapshot{
		RunID:        "run-1",
		PendingQueue: []domain.QueuedURL{{URL: "https://a.test/p", Domain: "a.test"}},
		VisitedUrls:  []uint32{42},
		DomainStates: map[string]*domain.DomainState{"a.test": {Domain: "a.test"}},
		RunState:     domain.NewState("run-1"),
		RecentErrors: nil,
	}

	require.NoError(t, s.Save(ctx, snap))

	loaded, found, err := s.Load(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap.PendingQueue, loaded.PendingQueue)
	assert.Equal(t, snap.VisitedUrls, loaded.VisitedUrls)
}
