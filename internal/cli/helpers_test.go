package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aidanlsb/spotql/internal/cache"
	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/store"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	os.Stdout = w

	outputCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		var buf bytes.Buffer
		_, copyErr := io.Copy(&buf, r)
		_ = r.Close()
		if copyErr != nil {
			errCh <- copyErr
			return
		}
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	select {
	case err := <-errCh:
		t.Fatalf("io.Copy: %v", err)
		return ""
	case output := <-outputCh:
		return output
	}
}

// setGlobals swaps CLI globals for the duration of a test.
func setGlobals(t *testing.T, json bool, format string) {
	t.Helper()
	prevJSON, prevFormat, prevCfg := jsonOutput, formatFlag, cfg
	t.Cleanup(func() {
		jsonOutput, formatFlag, cfg = prevJSON, prevFormat, prevCfg
	})
	jsonOutput = json
	formatFlag = format
	cfg = nil
}

type fakeFetcher struct {
	playlists []catalog.Playlist
	albums    []catalog.Album
	err       error
}

func (f *fakeFetcher) Playlists(context.Context) ([]catalog.Playlist, error) {
	return f.playlists, f.err
}

func (f *fakeFetcher) SavedAlbums(context.Context) ([]catalog.Album, error) {
	return f.albums, f.err
}

func testLibrary() *fakeFetcher {
	return &fakeFetcher{
		playlists: []catalog.Playlist{
			{ID: "pl1", Name: "Road Trip", Tracks: []catalog.Track{
				{ID: "t1", Name: "Cornerstone", Popularity: 62},
				{ID: "t2", Name: "Reptilia", Popularity: 70},
			}},
			{ID: "pl2", Name: "Gym", Tracks: []catalog.Track{
				{ID: "t3", Name: "Till I Collapse", Popularity: 8},
			}},
		},
		albums: []catalog.Album{
			{ID: "al1", Name: "AM", Popularity: 85, ArtistNames: []string{"Arctic Monkeys"}},
		},
	}
}

// newTestSession wires an in-memory store to a loader over f.
func newTestSession(t *testing.T, f cache.Fetcher) *session {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("store.OpenInMemory: %v", err)
	}
	s := &session{store: st}
	s.loader = cache.New(f, cache.Options{
		Store: st,
		Warn:  func(msg string) { s.warn(WarnStaleData, msg) },
	})
	t.Cleanup(func() { s.Close() })
	return s
}
