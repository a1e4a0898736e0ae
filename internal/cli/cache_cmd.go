package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/spotql/internal/store"
	"github.com/aidanlsb/spotql/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached playlists and albums",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached collections and their age",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:       "clear [playlists|albums]",
	Short:     "Drop cached data so the next statement fetches again",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(store.KindPlaylists), string(store.KindAlbums)},
	RunE:      runCacheClear,
}

var cacheRefreshCmd = &cobra.Command{
	Use:       "refresh [playlists|albums]",
	Short:     "Fetch collections now regardless of age",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(store.KindPlaylists), string(store.KindAlbums)},
	RunE:      runCacheRefresh,
}

type cacheEntryView struct {
	Kind      store.Kind `json:"kind"`
	FetchedAt time.Time  `json:"fetched_at"`
	AgeSecs   int64      `json:"age_seconds"`
	Fresh     bool       `json:"fresh"`
	Bytes     int64      `json:"bytes"`
}

func parseKinds(args []string) ([]store.Kind, error) {
	if len(args) == 0 {
		return nil, nil
	}
	switch strings.ToLower(args[0]) {
	case "playlists", "playlist":
		return []store.Kind{store.KindPlaylists}, nil
	case "albums", "album":
		return []store.Kind{store.KindAlbums}, nil
	}
	return nil, fmt.Errorf("unknown collection %q (use playlists or albums)", args[0])
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer sess.Close()

	infos, err := sess.store.Snapshots()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	now := time.Now()
	ttl := sess.loader.TTL()
	views := make([]cacheEntryView, len(infos))
	for i, info := range infos {
		age := now.Sub(info.FetchedAt)
		views[i] = cacheEntryView{
			Kind:      info.Kind,
			FetchedAt: info.FetchedAt,
			AgeSecs:   int64(age.Seconds()),
			Fresh:     age < ttl,
			Bytes:     info.Bytes,
		}
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"path":        sess.store.Path(),
			"ttl_seconds": int64(ttl.Seconds()),
			"collections": views,
		}, &Meta{Count: len(views)})
		return nil
	}

	fmt.Printf("cache: %s\n", sess.store.Path())
	fmt.Printf("ttl:   %s\n", ttl)
	if len(views) == 0 {
		fmt.Println(ui.Hint("Nothing cached yet."))
		return nil
	}
	for _, v := range views {
		state := "fresh"
		if !v.Fresh {
			state = "stale"
		}
		fmt.Printf("  %-10s %s  %s\n", v.Kind,
			ui.Hint(fmt.Sprintf("fetched %s ago", time.Duration(v.AgeSecs)*time.Second)), state)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(args)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	sess, err := openSession()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer sess.Close()

	removed, err := sess.store.DeleteSnapshots(kinds...)
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"removed": removed}, nil)
		return nil
	}
	fmt.Println(ui.Successf("Removed %s.", ui.Plural(int(removed), "cached collection")))
	return nil
}

func runCacheRefresh(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(args)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	sess, err := openSession()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer sess.Close()

	lock, err := store.AcquireLock(sess.store.Path() + ".refresh.lock")
	if errors.Is(err, store.ErrLocked) {
		return handleError(ErrDatabaseError, errors.New("another refresh is already running"), "")
	}
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var spinner *ui.Spinner
	if !jsonOutput && stderrIsTerminal() {
		spinner = ui.NewSpinner(os.Stderr, "Fetching")
		spinner.Start()
	}
	err = sess.loader.Refresh(ctx, kinds...)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		code := ErrFetchFailed
		if statementErrorCode(err) == ErrNotLoggedIn {
			code = ErrNotLoggedIn
		}
		return handleError(code, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"refreshed": true}, nil)
		return nil
	}
	fmt.Println(ui.Success("Cache refreshed."))
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd, cacheRefreshCmd)
	rootCmd.AddCommand(cacheCmd)
}
