package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
)

// MarkdownRenderMargin is the left margin of rendered docs.
const MarkdownRenderMargin = 2

const defaultCodeTheme = "monokai"

// codeThemes are the Chroma styles accepted for code blocks.
var codeThemes = []string{
	"monokai", "dracula", "github", "github-dark", "nord", "onedark",
	"solarized-dark", "solarized-light", "gruvbox", "catppuccin-mocha", "vim",
}

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme selects the code block theme. Unknown names fall
// back to the default.
func ConfigureMarkdownCodeTheme(theme string) {
	name := strings.ToLower(strings.TrimSpace(theme))
	for _, known := range codeThemes {
		if name == known {
			markdownCodeTheme = known
			return
		}
	}
	markdownCodeTheme = defaultCodeTheme
}

// RenderMarkdown renders a docs topic for the terminal. Fenced blocks without
// a language hold statements and are highlighted as SQL.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(tagStatementFences(content))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

// tagStatementFences marks opening ``` fences that name no language as sql.
func tagStatementFences(content string) string {
	lines := strings.Split(content, "\n")
	open := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		if !open && trimmed == "```" {
			lines[i] = strings.Replace(line, "```", "```sql", 1)
		}
		open = !open
	}
	return strings.Join(lines, "\n")
}

// markdownStyle covers what the docs topics use: two heading levels,
// paragraphs, bullet lists, inline code, code blocks and tables.
func markdownStyle() ansi.StyleConfig {
	muted := mdStringPtr("8")
	var accent *string
	if color, ok := AccentColor(); ok {
		accent = mdStringPtr(color)
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockPrefix: "\n", BlockSuffix: "\n"},
			Margin:         mdUintPtr(MarkdownRenderMargin),
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockSuffix: "\n", Color: accent, Bold: mdBoolPtr(true)},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Underline: mdBoolPtr(true)},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "▸ "},
		},
		List:   ansi.StyleList{LevelIndent: 2},
		Item:   ansi.StylePrimitive{BlockPrefix: "• "},
		Strong: ansi.StylePrimitive{Bold: mdBoolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: accent},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{Margin: mdUintPtr(MarkdownRenderMargin)},
			Theme:      markdownCodeTheme,
		},
		Table: ansi.StyleTable{
			StyleBlock:      ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: muted}},
			CenterSeparator: mdStringPtr("┼"),
			ColumnSeparator: mdStringPtr("│"),
			RowSeparator:    mdStringPtr("─"),
		},
	}
}

func mdBoolPtr(v bool) *bool { return &v }

func mdStringPtr(v string) *string { return &v }

func mdUintPtr(v uint) *uint { return &v }
