package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/spotql/internal/auth"
	"github.com/aidanlsb/spotql/internal/config"
	"github.com/aidanlsb/spotql/internal/store"
	"github.com/aidanlsb/spotql/internal/ui"
)

const loginTimeout = 5 * time.Minute

var loginNoBrowser bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize spotql to read your playlists and saved albums",
	Long: `Authorize spotql to read your playlists and saved albums.

Opens the authorization page in your browser and waits for the redirect on
redirect_uri (default http://127.0.0.1:5907). The client_id of your registered
application must be set first:

  spotql config set client_id <id>`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	c := getConfig()
	client, err := auth.NewClient(auth.Options{
		ClientID:    c.ClientID,
		RedirectURI: c.GetRedirectURI(),
		AuthBase:    c.GetAuthBase(),
	})
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	opts := auth.LoginOptions{
		Status: func(msg string) { statusf(ui.Info(msg)) },
	}
	if loginNoBrowser {
		opts.OpenURL = func(url string) error {
			statusf(ui.Info("Open this URL to continue:\n" + url))
			return nil
		}
	}

	creds, err := auth.Login(ctx, client, opts)
	if err != nil {
		return handleError(ErrAuthFailed, err, "")
	}

	path := config.ResolveCredentialsPath(getConfigPath())
	if err := config.SaveCredentials(path, creds); err != nil {
		return handleError(ErrInternal, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"credentials_path": path,
			"expires_at":       creds.ExpiresAt,
			"scope":            creds.Scope,
		}, nil)
		return nil
	}
	fmt.Println(ui.Success("Logged in."))
	return nil
}

var logoutKeepCache bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete stored credentials and cached data",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	path := config.ResolveCredentialsPath(getConfigPath())
	if err := config.DeleteCredentials(path); err != nil {
		return handleError(ErrInternal, err, "")
	}

	var removed int64
	if !logoutKeepCache {
		st, err := store.Open(getConfig().ResolveCachePath(getConfigPath()))
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		removed, err = st.DeleteSnapshots()
		st.Close()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"snapshots_removed": removed}, nil)
		return nil
	}
	fmt.Println(ui.Success("Logged out."))
	return nil
}

func init() {
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	logoutCmd.Flags().BoolVar(&logoutKeepCache, "keep-cache", false, "Keep cached playlists and albums")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
