// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/spotql/internal/config"
	"github.com/aidanlsb/spotql/internal/ui"
)

var (
	// Global flags
	configPath string
	debugFlag  bool
	formatFlag string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "spotql",
	Short: "spotql - query your playlists and saved albums with SQL-like statements",
	Long: `spotql runs SQL-like statements over your music library:

  SELECT name, artists FROM PLAYLIST(Road Trip) WHERE popularity > 70;
  SELECT COUNT(name) FROM ALBUMS WHERE "Arctic Monkeys" IN artists;

Run without arguments to start an interactive shell. Fetched data is cached
locally and refreshed once it is older than the configured cache_ttl.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return abortPreRun(ErrConfigInvalid, err, "Fix the file or run 'spotql config path' to locate it")
		}
		// The config commands must still work on an invalid file to repair it.
		if err := cfg.Validate(); err != nil && !underConfigCmd(cmd) {
			return abortPreRun(ErrConfigInvalid, err, "Run 'spotql config set <key> \"\"' to reset a setting")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		return nil
	},
	RunE: runShell,
}

// errReported marks an error already written as a JSON envelope.
var errReported = errors.New("error already reported")

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

// abortPreRun stops the command in both output modes. handleError alone would
// let the command run after writing the JSON error.
func abortPreRun(code string, err error, suggestion string) error {
	if jsonOutput {
		outputError(code, err, nil, suggestion)
		return errReported
	}
	return handleError(code, err, suggestion)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print tokens and the parsed statement before running it")
	rootCmd.PersistentFlags().Var((*formatValue)(&formatFlag), "format", "Result format: table, json or yaml (overrides ui.format)")
}

func underConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// getConfigPath returns the resolved config path.
func getConfigPath() string {
	if resolvedConfigPath == "" {
		return config.ResolveConfigPath(configPath)
	}
	return resolvedConfigPath
}

func debugEnabled() bool {
	return debugFlag || getConfig().Debug
}

// resultFormat resolves the output format: --json, then --format, then config.
func resultFormat() string {
	if jsonOutput {
		return "json"
	}
	if f := strings.ToLower(strings.TrimSpace(formatFlag)); f != "" {
		return f
	}
	return getConfig().GetFormat()
}

// formatValue rejects unknown result formats while flags are parsed.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Type() string { return "format" }

func (f *formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, known := range config.Formats {
		if s == known {
			*f = formatValue(s)
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (use %s)", s, strings.Join(config.Formats, ", "))
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFromOrDefault(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}

// statusf prints a human status line to stderr. Suppressed in JSON mode so
// stdout and stderr stay machine-readable.
func statusf(line string) {
	if jsonOutput {
		return
	}
	fmt.Fprintln(os.Stderr, line)
}
