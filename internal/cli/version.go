package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/spotql/internal/buildinfo"
	"github.com/aidanlsb/spotql/internal/store"
	"github.com/aidanlsb/spotql/internal/ui"
)

const defaultModulePath = "github.com/aidanlsb/spotql"

type versionInfo struct {
	Version       string `json:"version"`
	ModulePath    string `json:"module_path"`
	Commit        string `json:"commit,omitempty"`
	CommitTime    string `json:"commit_time,omitempty"`
	Modified      bool   `json:"modified"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	CacheSchema   int    `json:"cache_schema"`
	SQLiteVersion string `json:"sqlite_driver,omitempty"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the spotql version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Printf("spotql %s\n", info.Version)
		for _, line := range info.details() {
			fmt.Printf("  %s %s\n", ui.Hint(fmt.Sprintf("%-13s", line[0]+":")), line[1])
		}
		return nil
	},
}

// details lists the non-empty fields after the version, in print order.
func (v versionInfo) details() [][2]string {
	lines := [][2]string{{"module", v.ModulePath}}
	if v.Commit != "" {
		commit := v.Commit
		if v.Modified {
			commit += " (modified)"
		}
		lines = append(lines, [2]string{"commit", commit})
	}
	if v.CommitTime != "" {
		lines = append(lines, [2]string{"built", v.CommitTime})
	}
	lines = append(lines,
		[2]string{"go", v.GoVersion},
		[2]string{"platform", v.Platform},
		[2]string{"cache schema", fmt.Sprintf("v%d", v.CacheSchema)},
	)
	if v.SQLiteVersion != "" {
		lines = append(lines, [2]string{"sqlite driver", v.SQLiteVersion})
	}
	return lines
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:     "devel",
		ModulePath:  defaultModulePath,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		CacheSchema: store.CurrentVersion,
	}

	bi, ok := readBuildInfo()
	if ok && bi != nil {
		if bi.Main.Path != "" {
			info.ModulePath = bi.Main.Path
		}
		info.Version = normalizeVersion(bi.Main.Version)
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		goos, goarch := buildSetting(bi, "GOOS"), buildSetting(bi, "GOARCH")
		if goos != "" && goarch != "" {
			info.Platform = goos + "/" + goarch
		}
		info.Commit = buildSetting(bi, "vcs.revision")
		info.CommitTime = buildSetting(bi, "vcs.time")
		info.Modified = strings.EqualFold(buildSetting(bi, "vcs.modified"), "true")
		for _, dep := range bi.Deps {
			if dep.Path == "modernc.org/sqlite" {
				info.SQLiteVersion = dep.Version
			}
		}
	}

	// Release builds carry ldflags values; build info wins when both exist.
	if info.Version == "devel" && buildinfo.Version != "" {
		info.Version = normalizeVersion(buildinfo.Version)
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}
	return info
}

func normalizeVersion(version string) string {
	if version == "" || version == "(devel)" {
		return "devel"
	}
	return version
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
