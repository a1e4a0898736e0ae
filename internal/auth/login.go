package auth

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/aidanlsb/spotql/internal/config"
)

// LoginOptions customise Login.
type LoginOptions struct {
	// OpenURL opens the authorize URL. Defaults to OpenBrowser.
	OpenURL func(url string) error
	// Status receives progress messages.
	Status func(msg string)
}

// Login runs the full PKCE flow: it listens for the redirect, opens the
// authorize URL, waits for the code and exchanges it for credentials.
func Login(ctx context.Context, c *Client, opts LoginOptions) (*config.Credentials, error) {
	if opts.OpenURL == nil {
		opts.OpenURL = OpenBrowser
	}
	if opts.Status == nil {
		opts.Status = func(string) {}
	}

	verifier, err := NewVerifier()
	if err != nil {
		return nil, err
	}
	state, err := randomString(16)
	if err != nil {
		return nil, err
	}

	cb, err := Listen(c.RedirectURI(), state)
	if err != nil {
		return nil, err
	}

	opts.Status("Listening for the authorization response on " + cb.Addr())

	authURL := c.AuthorizeURL(Challenge(verifier), state)
	if err := opts.OpenURL(authURL); err != nil {
		opts.Status(fmt.Sprintf("Could not open a browser (%v). Open this URL to continue:\n%s", err, authURL))
	} else {
		opts.Status("Opened the authorization page in your browser.")
	}

	code, err := cb.Wait(ctx)
	if err != nil {
		return nil, err
	}

	opts.Status("Fetching access token.")
	return c.Exchange(ctx, code, verifier)
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
