// Package cache keeps fetched catalogue collections fresh for the query engine.
//
// Each collection is held in memory with the time it was fetched. A lookup
// returns the held copy while it is younger than the TTL, otherwise it fetches
// again. Fetched copies are also written to the store so a later process can
// reuse them within the same TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/query"
	"github.com/aidanlsb/spotql/internal/store"
)

// DefaultTTL is how long a fetched collection is served without refetching.
const DefaultTTL = 30 * time.Minute

// Fetcher retrieves collections from the catalogue service.
type Fetcher interface {
	Playlists(ctx context.Context) ([]catalog.Playlist, error)
	SavedAlbums(ctx context.Context) ([]catalog.Album, error)
}

// Entry is one cached collection.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// Fresh reports whether the entry is younger than ttl at now.
func (e *Entry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return e != nil && !e.FetchedAt.IsZero() && now.Sub(e.FetchedAt) < ttl
}

// Options configure a Loader. The zero value is usable.
type Options struct {
	TTL   time.Duration    // DefaultTTL when zero
	Store *store.Store     // optional persistent snapshots
	Now   func() time.Time // time.Now when nil
	Warn  func(msg string) // receives non-fatal problems; dropped when nil
}

// Loader implements query.Loader on top of a Fetcher.
type Loader struct {
	fetcher Fetcher
	opts    Options

	mu        sync.Mutex
	playlists *Entry[[]catalog.Playlist]
	albums    *Entry[[]catalog.Album]
}

var _ query.Loader = (*Loader)(nil)

// New creates a Loader.
func New(fetcher Fetcher, opts Options) *Loader {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Warn == nil {
		opts.Warn = func(string) {}
	}
	return &Loader{fetcher: fetcher, opts: opts}
}

// TTL returns the freshness window in use.
func (l *Loader) TTL() time.Duration { return l.opts.TTL }

// Load returns a snapshot holding the collection src reads from. The snapshot
// is a copy of the slice headers only; callers must not modify records.
func (l *Loader) Load(ctx context.Context, src query.DataSource) (*catalog.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lib := &catalog.Library{}
	if src.NeedsPlaylists() {
		entry, err := getOrRefresh(ctx, l, &l.playlists, store.KindPlaylists, l.fetcher.Playlists, false)
		if err != nil {
			return nil, &query.SourceError{Source: src, Message: "Playlist data not fetched.", Err: err}
		}
		lib.Playlists = entry.Value
		lib.HasPlaylists = true
		return lib, nil
	}

	entry, err := getOrRefresh(ctx, l, &l.albums, store.KindAlbums, l.fetcher.SavedAlbums, false)
	if err != nil {
		return nil, &query.SourceError{Source: src, Message: "Saved album data not fetched.", Err: err}
	}
	lib.Albums = entry.Value
	lib.HasAlbums = true
	return lib, nil
}

// Refresh fetches the given kinds regardless of age, or both when none are
// given. Unlike Load, a failed fetch is returned even when older data exists.
func (l *Loader) Refresh(ctx context.Context, kinds ...store.Kind) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(kinds) == 0 {
		kinds = []store.Kind{store.KindPlaylists, store.KindAlbums}
	}
	for _, kind := range kinds {
		var err error
		switch kind {
		case store.KindPlaylists:
			_, err = getOrRefresh(ctx, l, &l.playlists, kind, l.fetcher.Playlists, true)
		case store.KindAlbums:
			_, err = getOrRefresh(ctx, l, &l.albums, kind, l.fetcher.SavedAlbums, true)
		default:
			err = fmt.Errorf("unknown collection %q", kind)
		}
		if err != nil {
			return fmt.Errorf("refresh %s: %w", kind, err)
		}
	}
	return nil
}

// Invalidate drops the in-memory copies. Persisted snapshots are untouched.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playlists = nil
	l.albums = nil
}

func getOrRefresh[T any](
	ctx context.Context,
	l *Loader,
	slot **Entry[T],
	kind store.Kind,
	fetch func(context.Context) (T, error),
	force bool,
) (*Entry[T], error) {
	now := l.opts.Now()

	if *slot == nil && l.opts.Store != nil {
		var v T
		at, err := l.opts.Store.LoadSnapshot(kind, &v)
		switch {
		case err == nil:
			*slot = &Entry[T]{Value: v, FetchedAt: at}
		case !errors.Is(err, store.ErrNoSnapshot):
			l.opts.Warn(fmt.Sprintf("ignoring unreadable %s snapshot: %v", kind, err))
		}
	}

	if !force && (*slot).Fresh(now, l.opts.TTL) {
		return *slot, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		if *slot != nil && !force {
			l.opts.Warn(fmt.Sprintf("could not refresh %s, using data from %s: %v",
				kind, (*slot).FetchedAt.Format(time.RFC822), err))
			return *slot, nil
		}
		return nil, err
	}

	*slot = &Entry[T]{Value: v, FetchedAt: now}
	if l.opts.Store != nil {
		if err := l.opts.Store.SaveSnapshot(kind, now, v); err != nil {
			l.opts.Warn(fmt.Sprintf("could not save %s snapshot: %v", kind, err))
		}
	}
	return *slot, nil
}
