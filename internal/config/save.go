package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type persistedConfig struct {
	ClientID    *string              `toml:"client_id,omitempty"`
	RedirectURI *string              `toml:"redirect_uri,omitempty"`
	APIBase     *string              `toml:"api_base,omitempty"`
	AuthBase    *string              `toml:"auth_base,omitempty"`
	CacheTTL    *string              `toml:"cache_ttl,omitempty"`
	CachePath   *string              `toml:"cache_path,omitempty"`
	Debug       *bool                `toml:"debug,omitempty"`
	UI          *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
	Format    *string `toml:"format,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the config to a specific path atomically. Empty settings are
// omitted so defaults keep applying.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		ClientID:    nonEmptyPtr(cfg.ClientID),
		RedirectURI: nonEmptyPtr(cfg.RedirectURI),
		APIBase:     nonEmptyPtr(cfg.APIBase),
		AuthBase:    nonEmptyPtr(cfg.AuthBase),
		CacheTTL:    nonEmptyPtr(cfg.CacheTTL),
		CachePath:   nonEmptyPtr(cfg.CachePath),
	}
	if cfg.Debug {
		debug := true
		out.Debug = &debug
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	format := nonEmptyPtr(cfg.UI.Format)
	if accent != nil || codeTheme != nil || format != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
			Format:    format,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}

// Keys lists the setting names accepted by Set.
var Keys = []string{
	"api_base",
	"auth_base",
	"cache_path",
	"cache_ttl",
	"client_id",
	"debug",
	"redirect_uri",
	"ui.accent",
	"ui.code_theme",
	"ui.format",
}

// Set assigns one setting by its TOML key and validates the result.
// An empty value resets the setting to its default.
func (c *Config) Set(key, value string) error {
	next := *c
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "api_base":
		next.APIBase = value
	case "auth_base":
		next.AuthBase = value
	case "cache_path":
		next.CachePath = value
	case "cache_ttl":
		next.CacheTTL = value
	case "client_id":
		next.ClientID = value
	case "redirect_uri":
		next.RedirectURI = value
	case "ui.accent":
		next.UI.Accent = value
	case "ui.code_theme":
		next.UI.CodeTheme = value
	case "ui.format":
		next.UI.Format = value
	case "debug":
		if value == "" {
			next.Debug = false
			break
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("debug must be true or false, got %q", value)
		}
		next.Debug = b
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
