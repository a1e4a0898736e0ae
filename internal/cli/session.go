package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aidanlsb/spotql/internal/api"
	"github.com/aidanlsb/spotql/internal/auth"
	"github.com/aidanlsb/spotql/internal/cache"
	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/config"
	"github.com/aidanlsb/spotql/internal/store"
	"github.com/aidanlsb/spotql/internal/ui"
)

// session holds what statement execution needs: the cache database and a
// loader that fetches through the API on demand.
type session struct {
	store  *store.Store
	loader *cache.Loader

	mu       sync.Mutex
	warnings []Warning
}

// openSession opens the cache database and wires the loader. Credentials are
// only read when a fetch is needed, so cached data stays queryable while
// logged out.
func openSession() (*session, error) {
	c := getConfig()
	ttl, err := c.TTL()
	if err != nil {
		return nil, err
	}

	st, rebuilt, err := store.OpenWithRebuild(c.ResolveCachePath(getConfigPath()))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	s := &session{store: st}
	if rebuilt {
		s.warn(WarnCacheRebuilt, "cache database was written by another version and has been rebuilt")
	}

	fetcher := &lazyFetcher{open: func() (*api.Client, error) { return newAPIClient(c) }}
	s.loader = cache.New(fetcher, cache.Options{
		TTL:   ttl,
		Store: st,
		Warn:  func(msg string) { s.warn(WarnStaleData, msg) },
	})
	return s, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// warn prints a warning in text mode and collects it for the JSON envelope.
func (s *session) warn(code, msg string) {
	s.mu.Lock()
	s.warnings = append(s.warnings, Warning{Code: code, Message: msg})
	s.mu.Unlock()
	if !jsonOutput {
		fmt.Fprintln(os.Stderr, ui.Warning(msg))
	}
}

// takeWarnings returns and clears the collected warnings.
func (s *session) takeWarnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.warnings
	s.warnings = nil
	return out
}

func newAPIClient(c *config.Config) (*api.Client, error) {
	authClient, err := auth.NewClient(auth.Options{
		ClientID:    c.ClientID,
		RedirectURI: c.GetRedirectURI(),
		AuthBase:    c.GetAuthBase(),
	})
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewRefreshingSource(authClient, config.ResolveCredentialsPath(getConfigPath()), nil)
	if err != nil {
		return nil, err
	}
	return api.NewClient(tokens, api.Options{BaseURL: c.GetAPIBase()}), nil
}

// lazyFetcher builds the API client on first use.
type lazyFetcher struct {
	open func() (*api.Client, error)

	once   sync.Once
	client *api.Client
	err    error
}

func (f *lazyFetcher) get() (*api.Client, error) {
	f.once.Do(func() { f.client, f.err = f.open() })
	return f.client, f.err
}

func (f *lazyFetcher) Playlists(ctx context.Context) ([]catalog.Playlist, error) {
	c, err := f.get()
	if err != nil {
		return nil, err
	}
	return c.Playlists(ctx)
}

func (f *lazyFetcher) SavedAlbums(ctx context.Context) ([]catalog.Album, error) {
	c, err := f.get()
	if err != nil {
		return nil, err
	}
	return c.SavedAlbums(ctx)
}
