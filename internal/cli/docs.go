package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	builtindocs "github.com/aidanlsb/spotql/docs"
	"github.com/aidanlsb/spotql/internal/query"
	"github.com/aidanlsb/spotql/internal/ui"
)

const docsIndexPath = "index.yaml"

var docsFS fs.FS = builtindocs.FS

var (
	docsStdoutIsTerminal = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
	docsMarkdownRender   = ui.RenderMarkdown
)

type docsTopic struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Path  string `yaml:"path" json:"path"`
}

type docsIndex struct {
	Topics []docsTopic `yaml:"topics"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Show the query language reference",
	Long: `Show the query language reference.

Without a topic, lists the available topics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func loadDocsIndex() (*docsIndex, error) {
	data, err := fs.ReadFile(docsFS, docsIndexPath)
	if err != nil {
		return nil, fmt.Errorf("read docs index: %w", err)
	}
	var idx docsIndex
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse docs index: %w", err)
	}
	return &idx, nil
}

func (idx *docsIndex) find(id string) (docsTopic, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range idx.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return docsTopic{}, false
}

// docsTopicMarkdown returns the markdown of a topic. The sources topic gets
// the attribute tables appended from the record definitions.
func docsTopicMarkdown(id string) (docsTopic, string, error) {
	idx, err := loadDocsIndex()
	if err != nil {
		return docsTopic{}, "", err
	}
	topic, ok := idx.find(id)
	if !ok {
		ids := make([]string, len(idx.Topics))
		for i, t := range idx.Topics {
			ids[i] = t.ID
		}
		return docsTopic{}, "", fmt.Errorf("unknown docs topic %q (available: %s)", id, strings.Join(ids, ", "))
	}

	data, err := fs.ReadFile(docsFS, topic.Path)
	if err != nil {
		return topic, "", fmt.Errorf("read docs topic %s: %w", topic.ID, err)
	}
	content := string(data)
	if topic.ID == "sources" {
		content += attributeTables()
	}
	return topic, content, nil
}

func attributeTables() string {
	var b strings.Builder
	sections := []struct {
		title  string
		source query.DataSource
	}{
		{"Playlist attributes (`PLAYLISTS`)", query.PlaylistsSource()},
		{"Album attributes (`ALBUMS`)", query.SavedAlbumsSource()},
		{"Track attributes (`PLAYLIST(name)`, `ALBUM(name)`)", query.PlaylistSource("")},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n", s.title)
		for _, attr := range s.source.Attributes() {
			fmt.Fprintf(&b, "- `%s`\n", attr)
		}
	}
	return b.String()
}

// renderDocsTopic writes a topic, rendered for terminals and raw otherwise.
func renderDocsTopic(w io.Writer, id string) error {
	_, content, err := docsTopicMarkdown(id)
	if err != nil {
		return err
	}
	if !docsStdoutIsTerminal() {
		_, err := io.WriteString(w, content)
		return err
	}
	rendered, err := docsMarkdownRender(content, ui.NewDisplayContext().TermWidth)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

func runDocs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		idx, err := loadDocsIndex()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"topics": idx.Topics}, &Meta{Count: len(idx.Topics)})
			return nil
		}
		fmt.Println(ui.Header("Topics"))
		for _, t := range idx.Topics {
			fmt.Printf("  %-10s %s\n", t.ID, ui.Hint(t.Title))
		}
		fmt.Println()
		fmt.Println(ui.Hint("Run 'spotql docs <topic>' to read one."))
		return nil
	}

	if isJSONOutput() {
		topic, content, err := docsTopicMarkdown(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Run 'spotql docs' to list topics")
		}
		outputSuccess(map[string]interface{}{
			"id":      topic.ID,
			"title":   topic.Title,
			"content": content,
		}, nil)
		return nil
	}

	if err := renderDocsTopic(os.Stdout, args[0]); err != nil {
		return handleError(ErrInvalidInput, err, "Run 'spotql docs' to list topics")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
