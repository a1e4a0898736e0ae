// Package api is a small client for the catalogue service's Web API. It
// fetches the signed-in user's playlists (with their tracks) and saved albums
// and maps them onto catalog records.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"
	pageLimit      = 50
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	maxErrorBody   = 512
)

// ErrUnauthorized is returned when the service rejects the access token.
var ErrUnauthorized = errors.New("access token rejected, run `spotql login`")

// TokenSource supplies a valid bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Sleep waits between rate-limited retries. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client calls the Web API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client authenticating with tokens.
func NewClient(tokens TokenSource, opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Client{baseURL: base, http: httpClient, tokens: tokens, sleep: sleep}
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// getJSON decodes the response of a GET into dst. 429 responses are retried
// after their Retry-After delay.
func (c *Client) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	for attempt := 0; ; attempt++ {
		retryAfter, err := c.doGet(ctx, rawURL, dst)
		if err == nil {
			return nil
		}
		if retryAfter < 0 || attempt >= maxRetries {
			return err
		}
		if err := c.sleep(ctx, retryAfter); err != nil {
			return err
		}
	}
}

// doGet performs one request. It returns a non-negative delay when the
// request may be retried.
func (c *Client) doGet(ctx context.Context, rawURL string, dst interface{}) (time.Duration, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return -1, errors.Wrap(err, "get access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return -1, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return -1, errors.Wrapf(err, "GET %s", rawURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return -1, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return retryDelay(resp.Header.Get("Retry-After")), statusError(resp, rawURL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return -1, statusError(resp, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return -1, errors.Wrapf(err, "decode response from %s", rawURL)
	}
	return -1, nil
}

func statusError(resp *http.Response, rawURL string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		URL:        rawURL,
		Body:       strings.TrimSpace(string(body)),
	}
}

func retryDelay(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// page is the service's paging envelope.
type page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

// collect follows next links from first and returns every item.
func collect[T any](ctx context.Context, c *Client, first string) ([]T, error) {
	var out []T
	next := first
	for next != "" {
		var p page[T]
		if err := c.getJSON(ctx, next, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		next = p.Next
	}
	return out, nil
}
