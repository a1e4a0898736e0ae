package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aidanlsb/spotql/internal/config"
)

const requestTimeout = 30 * time.Second

// Scopes are the permissions requested at login.
var Scopes = []string{
	"playlist-read-private",
	"user-library-read",
	"user-follow-read",
}

// Options configure a Client.
type Options struct {
	ClientID    string
	RedirectURI string
	AuthBase    string
	HTTPClient  *http.Client
	Now         func() time.Time
}

// Client talks to the accounts service.
type Client struct {
	clientID    string
	redirectURI string
	authBase    string
	http        *http.Client
	now         func() time.Time
}

// NewClient creates a Client. ClientID is required.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, fmt.Errorf("client_id is not configured (set it with `spotql config set client_id <id>`)")
	}
	c := &Client{
		clientID:    strings.TrimSpace(opts.ClientID),
		redirectURI: opts.RedirectURI,
		authBase:    strings.TrimRight(opts.AuthBase, "/"),
		http:        opts.HTTPClient,
		now:         opts.Now,
	}
	if c.redirectURI == "" {
		c.redirectURI = config.DefaultRedirectURI
	}
	if c.authBase == "" {
		c.authBase = config.DefaultAuthBase
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: requestTimeout}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// RedirectURI returns the URI the callback listener must serve.
func (c *Client) RedirectURI() string { return c.redirectURI }

// AuthorizeURL builds the URL the user opens to grant access.
func (c *Client) AuthorizeURL(challenge, state string) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {c.clientID},
		"scope":                 {strings.Join(Scopes, " ")},
		"code_challenge_method": {"S256"},
		"code_challenge":        {challenge},
		"redirect_uri":          {c.redirectURI},
	}
	if state != "" {
		params.Set("state", state)
	}
	return c.authBase + "/authorize?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// TokenError is an error response from the token endpoint.
type TokenError struct {
	StatusCode  int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *TokenError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token request failed (%d): %s: %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("token request failed (%d): %s", e.StatusCode, e.Code)
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code, verifier string) (*config.Credentials, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.redirectURI},
		"client_id":     {c.clientID},
		"code_verifier": {verifier},
	}, "")
}

// Refresh obtains a new access token. The service may omit a new refresh
// token, in which case the given one is kept.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*config.Credentials, error) {
	if refreshToken == "" {
		return nil, config.ErrNotLoggedIn
	}
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
	}, refreshToken)
}

func (c *Client) requestToken(ctx context.Context, form url.Values, previousRefresh string) (*config.Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBase+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		tokenErr := &TokenError{StatusCode: resp.StatusCode}
		if json.Unmarshal(body, tokenErr) != nil || tokenErr.Code == "" {
			tokenErr.Code = strings.TrimSpace(string(body))
		}
		return nil, tokenErr
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}

	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	return &config.Credentials{
		AccessToken:  tr.AccessToken,
		RefreshToken: refresh,
		Scope:        tr.Scope,
		ExpiresAt:    c.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC(),
	}, nil
}
