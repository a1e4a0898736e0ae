package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// CredentialsVersion is the current credentials file schema version.
const CredentialsVersion = 1

// expirySkew treats tokens as expired slightly before they really are.
const expirySkew = time.Minute

// ErrNotLoggedIn is returned when no credentials file exists.
var ErrNotLoggedIn = errors.New("not logged in, run `spotql login`")

// Credentials hold the OAuth tokens of the signed-in user.
type Credentials struct {
	Version      int       `toml:"version"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	Scope        string    `toml:"scope,omitempty"`
	ExpiresAt    time.Time `toml:"expires_at"`
}

// Expired reports whether the access token is missing or about to expire at now.
func (c *Credentials) Expired(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return true
	}
	return !now.Add(expirySkew).Before(c.ExpiresAt)
}

// ResolveCredentialsPath returns the credentials.toml path next to the config file.
func ResolveCredentialsPath(configPath string) string {
	return filepath.Join(filepath.Dir(ResolveConfigPath(configPath)), "credentials.toml")
}

// LoadCredentials reads credentials from path. It returns ErrNotLoggedIn when
// the file does not exist.
func LoadCredentials(path string) (*Credentials, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("credentials path is required")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNotLoggedIn
	}

	var creds Credentials
	if _, err := toml.DecodeFile(path, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	if creds.Version == 0 {
		creds.Version = CredentialsVersion
	}
	return &creds, nil
}

// SaveCredentials writes credentials atomically, readable by the owner only.
func SaveCredentials(path string, creds *Credentials) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("credentials path is required")
	}
	if creds == nil {
		return fmt.Errorf("credentials are required")
	}

	out := *creds
	out.Version = CredentialsVersion

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write credentials %s: %w", path, err)
	}
	return nil
}

// DeleteCredentials removes the credentials file. A missing file is not an error.
func DeleteCredentials(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials %s: %w", path, err)
	}
	return nil
}
