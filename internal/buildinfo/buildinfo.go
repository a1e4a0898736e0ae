// Package buildinfo holds release metadata set with -ldflags -X at build time.
package buildinfo

// Empty in local builds; the version command then falls back to the module
// build info embedded by the Go toolchain.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
