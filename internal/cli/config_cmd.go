package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/spotql/internal/config"
	"github.com/aidanlsb/spotql/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the spotql configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getConfigPath()
		created, err := config.CreateDefault(path)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if !created {
			return handleError(ErrConfigExists, fmt.Errorf("config already exists at %s", path),
				"Use 'spotql config set <key> <value>' to change it")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path, "created": true}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Created %s", path))
		fmt.Println(ui.Hint("Next: spotql config set client_id <id>, then spotql login"))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config, credentials and cache paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := configPaths()
		if isJSONOutput() {
			outputSuccess(paths, nil)
			return nil
		}
		fmt.Printf("config:      %s\n", paths["config"])
		fmt.Printf("credentials: %s\n", paths["credentials"])
		fmt.Printf("cache:       %s\n", paths["cache"])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := effectiveSettings(getConfig(), getConfigPath())
		if isJSONOutput() {
			outputSuccess(settings, nil)
			return nil
		}
		for _, key := range config.Keys {
			fmt.Printf("%-14s %s\n", key, settings[key])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save the config file.

An empty value resets the setting to its default. Keys:

  ` + strings.Join(config.Keys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *getConfig()
		if err := c.Set(args[0], args[1]); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		path := getConfigPath()
		if err := config.SaveTo(path, &c); err != nil {
			return handleError(ErrInternal, err, "")
		}
		cfg = &c

		key := strings.ToLower(strings.TrimSpace(args[0]))
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"path":  path,
				"key":   key,
				"value": effectiveSettings(&c, path)[key],
			}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Set %s in %s", key, path))
		return nil
	},
}

func configPaths() map[string]string {
	path := getConfigPath()
	return map[string]string{
		"config":      path,
		"credentials": config.ResolveCredentialsPath(path),
		"cache":       getConfig().ResolveCachePath(path),
	}
}

// effectiveSettings maps each key in config.Keys to the value in use,
// defaults included.
func effectiveSettings(c *config.Config, path string) map[string]string {
	ttl := c.CacheTTL
	if ttl == "" {
		ttl = config.DefaultCacheTTL.String()
	}
	return map[string]string{
		"api_base":      c.GetAPIBase(),
		"auth_base":     c.GetAuthBase(),
		"cache_path":    c.ResolveCachePath(path),
		"cache_ttl":     ttl,
		"client_id":     c.ClientID,
		"debug":         fmt.Sprintf("%t", c.Debug),
		"redirect_uri":  c.GetRedirectURI(),
		"ui.accent":     c.UI.Accent,
		"ui.code_theme": c.UI.CodeTheme,
		"ui.format":     c.GetFormat(),
	}
}

func init() {
	configCmd.AddCommand(configInitCmd, configPathCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
