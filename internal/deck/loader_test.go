package deck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashdeck/internal/storage"
)

type countingStore struct {
	*storage.Memory
	lists int
	err   error
}

func (s *countingStore) ListRows(ctx context.Context) ([]storage.Row, error) {
	s.lists++
	if s.err != nil {
		return nil, s.err
	}
	return s.Memory.ListRows(ctx)
}

func newCountingStore() *countingStore {
	return &countingStore{Memory: storage.NewMemory(
		storage.Row{"question": "What is WACC?", "answer": "Weighted avg cost of capital", "category": "Valuation", "difficulty": "Easy"},
	)}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLoaderCachesWithinTTL(t *testing.T) {
	store := newCountingStore()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	l := NewLoader(store, time.Minute, nil, WithClock(clock.now))
	assert.Equal(t, time.Minute, l.TTL())
	ctx := context.Background()

	d, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, clock.t, l.FetchedAt())

	require.NoError(t, store.AppendRow(ctx, storage.Record{Question: "q", Answer: "a", Category: "Tax", Difficulty: "Hard"}))
	clock.advance(30 * time.Second)
	d, err = l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len(), "cached deck is served while fresh")
	assert.Equal(t, 1, store.lists)

	clock.advance(30 * time.Second)
	d, err = l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 2, store.lists)
}

func TestLoaderReloadBypassesCache(t *testing.T) {
	store := newCountingStore()
	l := NewLoader(store, time.Hour, nil)
	ctx := context.Background()

	_, err := l.Load(ctx)
	require.NoError(t, err)
	_, err = l.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.lists)
}

func TestLoaderZeroTTLAlwaysFetches(t *testing.T) {
	store := newCountingStore()
	l := NewLoader(store, 0, nil)
	ctx := context.Background()

	for range 3 {
		_, err := l.Load(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.lists)
}

func TestLoaderFailureDropsCache(t *testing.T) {
	store := newCountingStore()
	l := NewLoader(store, time.Hour, nil)
	ctx := context.Background()

	_, err := l.Load(ctx)
	require.NoError(t, err)

	boom := errors.New("network down")
	store.err = boom
	_, err = l.Reload(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.True(t, l.FetchedAt().IsZero())

	// No stale fallback: the next Load goes to the store and fails again.
	_, err = l.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	assert.Equal(t, 3, store.lists)
}
