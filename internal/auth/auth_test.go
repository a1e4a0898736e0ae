package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aidanlsb/spotql/internal/config"
)

var fixedNow = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func TestVerifierAndChallenge(t *testing.T) {
	v, err := NewVerifier()
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if len(v) != verifierLength {
		t.Fatalf("len = %d, want %d", len(v), verifierLength)
	}
	for _, r := range v {
		if !strings.ContainsRune(verifierAlphabet, r) {
			t.Fatalf("unexpected character %q in verifier", r)
		}
	}

	sum := sha256.Sum256([]byte(v))
	want := strings.TrimRight(base64.URLEncoding.EncodeToString(sum[:]), "=")
	if got := Challenge(v); got != want {
		t.Errorf("Challenge = %q, want %q", got, want)
	}
	if strings.ContainsAny(Challenge(v), "+/=") {
		t.Error("challenge must be unpadded base64url")
	}
}

func TestAuthorizeURL(t *testing.T) {
	c, err := NewClient(Options{ClientID: "cid", AuthBase: "https://accounts.example/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	u, err := url.Parse(c.AuthorizeURL("chal", "st"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "accounts.example" || u.Path != "/authorize" {
		t.Errorf("unexpected URL %s", u)
	}
	q := u.Query()
	want := map[string]string{
		"response_type":         "code",
		"client_id":             "cid",
		"code_challenge_method": "S256",
		"code_challenge":        "chal",
		"redirect_uri":          config.DefaultRedirectURI,
		"state":                 "st",
		"scope":                 "playlist-read-private user-library-read user-follow-read",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestNewClientRequiresClientID(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error without client id")
	}
}

// tokenServer answers /api/token with canned responses and records forms.
type tokenServer struct {
	mu     sync.Mutex
	forms  []url.Values
	status int
	body   string
}

func (s *tokenServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/api/token" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.forms = append(s.forms, r.PostForm)
	status, body := s.status, s.body
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func newTokenClient(t *testing.T, ts *tokenServer) *Client {
	t.Helper()
	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{
		ClientID: "cid",
		AuthBase: srv.URL,
		Now:      func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestExchange(t *testing.T) {
	ts := &tokenServer{body: `{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt","scope":"user-library-read"}`}
	c := newTokenClient(t, ts)

	creds, err := c.Exchange(context.Background(), "the-code", "the-verifier")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if creds.AccessToken != "at" || creds.RefreshToken != "rt" || creds.Scope != "user-library-read" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if !creds.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", creds.ExpiresAt)
	}

	form := ts.forms[0]
	if form.Get("grant_type") != "authorization_code" || form.Get("code") != "the-code" ||
		form.Get("code_verifier") != "the-verifier" || form.Get("client_id") != "cid" {
		t.Errorf("unexpected form: %v", form)
	}
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	ts := &tokenServer{body: `{"access_token":"new","expires_in":60}`}
	c := newTokenClient(t, ts)

	creds, err := c.Refresh(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if creds.AccessToken != "new" || creds.RefreshToken != "old-refresh" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if got := ts.forms[0].Get("grant_type"); got != "refresh_token" {
		t.Errorf("grant_type = %q", got)
	}

	if _, err := c.Refresh(context.Background(), ""); !errors.Is(err, config.ErrNotLoggedIn) {
		t.Errorf("empty refresh token: err = %v, want ErrNotLoggedIn", err)
	}
}

func TestTokenErrors(t *testing.T) {
	ts := &tokenServer{status: http.StatusBadRequest, body: `{"error":"invalid_grant","error_description":"Invalid refresh token"}`}
	c := newTokenClient(t, ts)

	_, err := c.Refresh(context.Background(), "rt")
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("err = %v, want *TokenError", err)
	}
	if tokenErr.Code != "invalid_grant" || tokenErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected token error: %+v", tokenErr)
	}

	ts.mu.Lock()
	ts.body = "bad gateway"
	ts.status = http.StatusBadGateway
	ts.mu.Unlock()
	_, err = c.Refresh(context.Background(), "rt")
	if !errors.As(err, &tokenErr) || tokenErr.Code != "bad gateway" {
		t.Errorf("non-JSON error body: %v", err)
	}
}

func TestCallback(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  string
		status   int
	}{
		{"code", "code=abc&state=st", "abc", "", http.StatusOK},
		{"denied", "error=access_denied&state=st", "", "access_denied", http.StatusBadRequest},
		{"wrong state", "code=abc&state=other", "", "mismatched state", http.StatusBadRequest},
		{"no code", "state=st", "", "no code", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := Listen("http://127.0.0.1:0/callback", "st")
			if err != nil {
				t.Fatalf("Listen: %v", err)
			}

			resp, err := http.Get(fmt.Sprintf("http://%s/callback?%s", cb.Addr(), tt.query))
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			code, err := cb.Wait(ctx)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || code != tt.wantCode {
				t.Errorf("Wait = %q, %v; want %q", code, err, tt.wantCode)
			}
		})
	}
}

func TestCallbackWaitCancelled(t *testing.T) {
	cb, err := Listen("http://127.0.0.1:0", "")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cb.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestListenRejectsNonLocalURI(t *testing.T) {
	for _, uri := range []string{"https://127.0.0.1:5907", "not a url", "http://"} {
		if cb, err := Listen(uri, ""); err == nil {
			cb.Close()
			t.Errorf("Listen(%q) should fail", uri)
		}
	}
}

func TestLogin(t *testing.T) {
	ts := &tokenServer{body: `{"access_token":"at","expires_in":3600,"refresh_token":"rt"}`}
	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{ClientID: "cid", AuthBase: srv.URL, RedirectURI: "http://127.0.0.1:0/cb"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	// Port 0 is only resolved once bound, so the fake browser takes the
	// address from the status message.
	const prefix = "Listening for the authorization response on "
	var addr, challenge string
	opts := LoginOptions{
		Status: func(msg string) {
			if strings.HasPrefix(msg, prefix) {
				addr = strings.TrimPrefix(msg, prefix)
			}
		},
		OpenURL: func(raw string) error {
			u, err := url.Parse(raw)
			if err != nil {
				return err
			}
			challenge = u.Query().Get("code_challenge")
			resp, err := http.Get(fmt.Sprintf("http://%s/cb?code=granted&state=%s", addr, url.QueryEscape(u.Query().Get("state"))))
			if err != nil {
				return err
			}
			return resp.Body.Close()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	creds, err := Login(ctx, c, opts)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.AccessToken != "at" || creds.RefreshToken != "rt" {
		t.Errorf("unexpected credentials: %+v", creds)
	}

	form := ts.forms[0]
	if form.Get("code") != "granted" {
		t.Errorf("code = %q, want granted", form.Get("code"))
	}
	if got := Challenge(form.Get("code_verifier")); got != challenge {
		t.Errorf("verifier does not match the challenge sent to the browser")
	}
}

type fakeRefresher struct {
	calls int
	creds *config.Credentials
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, refreshToken string) (*config.Credentials, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.creds
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return &out, nil
}

func TestRefreshingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	now := fixedNow

	if _, err := NewRefreshingSource(&fakeRefresher{}, path, nil); !errors.Is(err, config.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}

	if err := config.SaveCredentials(path, &config.Credentials{
		AccessToken: "old", RefreshToken: "rt", ExpiresAt: now.Add(10 * time.Minute),
	}); err != nil {
		t.Fatal(err)
	}

	r := &fakeRefresher{creds: &config.Credentials{AccessToken: "new", ExpiresAt: now.Add(time.Hour + 10*time.Minute)}}
	src, err := NewRefreshingSource(r, path, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewRefreshingSource: %v", err)
	}

	tok, err := src.Token(context.Background())
	if err != nil || tok != "old" || r.calls != 0 {
		t.Fatalf("fresh token: %q, %v, calls=%d", tok, err, r.calls)
	}

	now = now.Add(time.Hour)
	tok, err = src.Token(context.Background())
	if err != nil || tok != "new" || r.calls != 1 {
		t.Fatalf("expired token: %q, %v, calls=%d", tok, err, r.calls)
	}

	saved, err := config.LoadCredentials(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.AccessToken != "new" || saved.RefreshToken != "rt" {
		t.Errorf("saved credentials = %+v", saved)
	}

	now = now.Add(2 * time.Hour)
	r.err = errors.New("invalid_grant")
	if _, err := src.Token(context.Background()); err == nil || !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("expected refresh failure, got %v", err)
	}
}
