package deck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"flashdeck/internal/storage"
)

type cacheEntry struct {
	deck      Deck
	fetchedAt time.Time
	ttl       time.Duration
}

func (e *cacheEntry) fresh(now time.Time) bool {
	return e != nil && e.ttl > 0 && now.Sub(e.fetchedAt) < e.ttl
}

// Loader fetches decks from a row store and keeps the last one for ttl.
type Loader struct {
	store  storage.RowStore
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
	cached *cacheEntry
}

type LoaderOption func(*Loader)

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// NewLoader returns a loader over store. A ttl of zero fetches on every Load.
func NewLoader(store storage.RowStore, ttl time.Duration, logger *zap.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{store: store, ttl: ttl, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TTL is the freshness window, zero when caching is off.
func (l *Loader) TTL() time.Duration { return l.ttl }

// Load returns the cached deck while it is fresh, otherwise fetches.
func (l *Loader) Load(ctx context.Context) (Deck, error) {
	if l.cached.fresh(l.now()) {
		return l.cached.deck, nil
	}
	return l.Reload(ctx)
}

// Reload always fetches and replaces the cached deck. On failure the cache
// is dropped; there is no stale fallback.
func (l *Loader) Reload(ctx context.Context) (Deck, error) {
	start := l.now()
	rows, err := l.store.ListRows(ctx)
	if err != nil {
		l.cached = nil
		l.logger.Error("load deck", zap.Error(err))
		if !errors.Is(err, storage.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", storage.ErrStoreUnavailable, err)
		}
		return Deck{}, fmt.Errorf("load deck: %w", err)
	}
	d := FromRows(rows)
	l.cached = &cacheEntry{deck: d, fetchedAt: start, ttl: l.ttl}
	l.logger.Info("deck loaded",
		zap.Int("cards", d.Len()),
		zap.Int("categories", len(d.Categories)),
		zap.Int("difficulties", len(d.Difficulties)),
	)
	return d, nil
}

// FetchedAt reports when the cached deck was fetched, zero if none.
func (l *Loader) FetchedAt() time.Time {
	if l.cached == nil {
		return time.Time{}
	}
	return l.cached.fetchedAt
}
