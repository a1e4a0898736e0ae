package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	expires := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := LoadCredentials(path); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("LoadCredentials on missing file = %v, want ErrNotLoggedIn", err)
	}

	in := &Credentials{AccessToken: "at", RefreshToken: "rt", Scope: "playlist-read-private", ExpiresAt: expires}
	if err := SaveCredentials(path, in); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	if runtime.GOOS != "windows" {
		st, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := st.Mode().Perm(); perm != 0o600 {
			t.Errorf("mode = %o, want 600", perm)
		}
	}

	got, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got.AccessToken != "at" || got.RefreshToken != "rt" || got.Version != CredentialsVersion {
		t.Errorf("unexpected credentials: %+v", got)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}

	if err := DeleteCredentials(path); err != nil {
		t.Fatalf("DeleteCredentials: %v", err)
	}
	if err := DeleteCredentials(path); err != nil {
		t.Fatalf("second DeleteCredentials: %v", err)
	}
	if _, err := LoadCredentials(path); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn after delete, got %v", err)
	}
}

func TestCredentialsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		creds *Credentials
		want  bool
	}{
		{"nil", nil, true},
		{"no token", &Credentials{ExpiresAt: now.Add(time.Hour)}, true},
		{"valid", &Credentials{AccessToken: "a", ExpiresAt: now.Add(time.Hour)}, false},
		{"within skew", &Credentials{AccessToken: "a", ExpiresAt: now.Add(30 * time.Second)}, true},
		{"past", &Credentials{AccessToken: "a", ExpiresAt: now.Add(-time.Hour)}, true},
	}
	for _, tt := range tests {
		if got := tt.creds.Expired(now); got != tt.want {
			t.Errorf("%s: Expired = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolveCredentialsPath(t *testing.T) {
	got := ResolveCredentialsPath(filepath.Join("/etc", "spotql", "config.toml"))
	want := filepath.Join("/etc", "spotql", "credentials.toml")
	if got != want {
		t.Errorf("ResolveCredentialsPath = %q, want %q", got, want)
	}
}
