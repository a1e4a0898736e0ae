// Package config handles spotql configuration and stored credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultRedirectURI = "http://127.0.0.1:5907"
	DefaultAPIBase     = "https://api.spotify.com/v1"
	DefaultAuthBase    = "https://accounts.spotify.com"
	DefaultCacheTTL    = 30 * time.Minute
	DefaultFormat      = "table"
)

// Formats lists the accepted values of ui.format.
var Formats = []string{"table", "json", "yaml"}

// Config represents the spotql configuration file.
type Config struct {
	// ClientID is the application's client ID registered with the service.
	ClientID string `toml:"client_id"`

	// RedirectURI must match the URI registered for the client. Login listens
	// on its host and port for the authorization callback.
	RedirectURI string `toml:"redirect_uri"`

	// APIBase and AuthBase override the service endpoints (mainly for testing).
	APIBase  string `toml:"api_base"`
	AuthBase string `toml:"auth_base"`

	// CacheTTL is how long fetched data is reused, as a Go duration ("30m").
	CacheTTL string `toml:"cache_ttl"`

	// CachePath is the SQLite cache file. Relative paths are resolved against
	// the config directory.
	CachePath string `toml:"cache_path"`

	// Debug prints tokens and parsed statements before execution.
	Debug bool `toml:"debug"`

	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional output preferences.
type UIConfig struct {
	// Accent is an optional accent color for table headers and markdown.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for code blocks in docs.
	CodeTheme string `toml:"code_theme"`

	// Format is the default result format: table, json or yaml.
	Format string `toml:"format"`
}

// TTL parses CacheTTL, defaulting to DefaultCacheTTL.
func (c *Config) TTL() (time.Duration, error) {
	raw := strings.TrimSpace(c.CacheTTL)
	if raw == "" {
		return DefaultCacheTTL, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_ttl %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("cache_ttl must be positive, got %s", raw)
	}
	return d, nil
}

// GetRedirectURI returns the redirect URI, falling back to the default.
func (c *Config) GetRedirectURI() string {
	return orDefault(c.RedirectURI, DefaultRedirectURI)
}

// GetAPIBase returns the API base URL, falling back to the default.
func (c *Config) GetAPIBase() string {
	return orDefault(c.APIBase, DefaultAPIBase)
}

// GetAuthBase returns the accounts base URL, falling back to the default.
func (c *Config) GetAuthBase() string {
	return orDefault(c.AuthBase, DefaultAuthBase)
}

// GetFormat returns the configured output format, falling back to table.
func (c *Config) GetFormat() string {
	return orDefault(strings.ToLower(c.UI.Format), DefaultFormat)
}

// ResolveCachePath returns the cache database path for a config file.
func (c *Config) ResolveCachePath(configPath string) string {
	configDir := filepath.Dir(ResolveConfigPath(configPath))
	p := strings.TrimSpace(c.CachePath)
	if p == "" {
		return filepath.Join(configDir, "cache.db")
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(configDir, filepath.FromSlash(p))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.TTL(); err != nil {
		return err
	}
	if f := c.GetFormat(); !isFormat(f) {
		return fmt.Errorf("invalid ui.format %q (use %s)", c.UI.Format, strings.Join(Formats, ", "))
	}
	return nil
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFromOrDefault(DefaultPath())
}

// LoadFromOrDefault loads path, returning a default config if it doesn't exist.
func LoadFromOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/spotql/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "spotql", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "spotql", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

const defaultConfig = `# spotql configuration

# Client ID of your registered application (required for login).
# client_id = ""

# Must match a redirect URI registered for the client.
# redirect_uri = "http://127.0.0.1:5907"

# How long fetched playlists and albums are reused before refetching.
# cache_ttl = "30m"

# SQLite cache and history database, relative to this file.
# cache_path = "cache.db"

# Print tokens and parsed statements before running them.
# debug = false

# [ui]
# accent = "39"
# code_theme = "monokai"
# format = "table"   # table, json or yaml
`

// CreateDefault creates a default config file at path if it doesn't exist.
// It reports whether a file was created.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeFileAtomic(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
