package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aidanlsb/spotql/internal/api"
	"github.com/aidanlsb/spotql/internal/config"
)

// Refresher obtains new credentials from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*config.Credentials, error)
}

// RefreshingSource is an api.TokenSource backed by the credentials file. An
// expired access token is refreshed and the new credentials are saved.
type RefreshingSource struct {
	refresher Refresher
	path      string
	now       func() time.Time

	mu    sync.Mutex
	creds *config.Credentials
}

var _ api.TokenSource = (*RefreshingSource)(nil)

// NewRefreshingSource loads credentials from path. It returns
// config.ErrNotLoggedIn when there are none.
func NewRefreshingSource(refresher Refresher, path string, now func() time.Time) (*RefreshingSource, error) {
	creds, err := config.LoadCredentials(path)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &RefreshingSource{refresher: refresher, path: path, now: now, creds: creds}, nil
}

// Token returns a valid access token.
func (s *RefreshingSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.creds.Expired(s.now()) {
		return s.creds.AccessToken, nil
	}

	fresh, err := s.refresher.Refresh(ctx, s.creds.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	if err := config.SaveCredentials(s.path, fresh); err != nil {
		return "", err
	}
	s.creds = fresh
	return fresh.AccessToken, nil
}
