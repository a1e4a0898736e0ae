// Package docs holds the query-language reference bundled with the spotql binary.
package docs

import "embed"

// FS contains the Markdown topics and their index.
//
//go:embed index.yaml topics
var FS embed.FS
