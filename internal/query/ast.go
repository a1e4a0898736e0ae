// Package query implements the catalogue query language: lexing, parsing,
// condition evaluation and statement execution.
package query

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/value"
)

// SourceKind identifies which collection a statement reads from.
type SourceKind int

const (
	SourcePlaylist    SourceKind = iota // tracks of one named playlist
	SourcePlaylists                     // all playlists as rows
	SourceSavedAlbum                    // tracks of one named saved album
	SourceSavedAlbums                   // all saved albums as rows
)

// DataSource names the backing collection of a statement. It carries no data.
type DataSource struct {
	Kind SourceKind
	Name string // only for SourcePlaylist and SourceSavedAlbum
}

// PlaylistSource selects the tracks of the named playlist.
func PlaylistSource(name string) DataSource {
	return DataSource{Kind: SourcePlaylist, Name: name}
}

// SavedAlbumSource selects the tracks of the named saved album.
func SavedAlbumSource(name string) DataSource {
	return DataSource{Kind: SourceSavedAlbum, Name: name}
}

// PlaylistsSource selects every playlist.
func PlaylistsSource() DataSource { return DataSource{Kind: SourcePlaylists} }

// SavedAlbumsSource selects every saved album.
func SavedAlbumsSource() DataSource { return DataSource{Kind: SourceSavedAlbums} }

func (s DataSource) String() string {
	switch s.Kind {
	case SourcePlaylist:
		return fmt.Sprintf("Playlist(%s)", s.Name)
	case SourceSavedAlbum:
		return fmt.Sprintf("SavedAlbum(%s)", s.Name)
	case SourceSavedAlbums:
		return "SavedAlbums"
	default:
		return "Playlists"
	}
}

// NeedsPlaylists reports whether the source is backed by the playlist collection.
func (s DataSource) NeedsPlaylists() bool {
	return s.Kind == SourcePlaylist || s.Kind == SourcePlaylists
}

// Attributes returns the attribute inventory of the record kind the source yields.
func (s DataSource) Attributes() []string {
	switch s.Kind {
	case SourcePlaylists:
		return catalog.PlaylistAttributes()
	case SourceSavedAlbums:
		return catalog.AlbumAttributes()
	default:
		return catalog.TrackAttributes()
	}
}

// Logical joins two conditions.
type Logical int

const (
	And Logical = iota
	Or
)

// Eval combines two booleans.
func (l Logical) Eval(a, b bool) bool {
	if l == Or {
		return a || b
	}
	return a && b
}

func (l Logical) String() string {
	if l == Or {
		return "Or"
	}
	return "And"
}

// Aggregation selects how filtered records become a result.
type Aggregation int

const (
	AggregateNone Aggregation = iota
	AggregateCount
	AggregateAverage
)

func (a Aggregation) String() string {
	switch a {
	case AggregateCount:
		return "Count"
	case AggregateAverage:
		return "Average"
	default:
		return "None"
	}
}

// Label formats a target name the way it was requested, e.g. COUNT(name).
func (a Aggregation) Label(target string) string {
	switch a {
	case AggregateCount:
		return "COUNT(" + target + ")"
	case AggregateAverage:
		return "AVERAGE(" + target + ")"
	default:
		return target
	}
}

// Comparison is one attribute/operator/literal triple of a WHERE clause.
type Comparison struct {
	Attribute string
	Op        value.Operator
	Value     value.Value
	// ValueFirst records that the literal was written on the left, as in
	// "Arctic Monkeys" IN artists. Evaluation is the same either way.
	ValueFirst bool
}

func (c Comparison) String() string {
	if c.ValueFirst {
		return fmt.Sprintf("%s %s %s", c.Value.Literal(), c.Op.Symbol(), c.Attribute)
	}
	return fmt.Sprintf("%s %s %s", c.Attribute, c.Op.Symbol(), c.Value.Literal())
}

// Conditions is a flat WHERE chain: Connectives[i] joins Leaves[i] and
// Leaves[i+1]. It always holds at least one leaf.
type Conditions struct {
	Leaves      []Comparison
	Connectives []Logical
}

// NewConditions starts a chain with its first comparison.
func NewConditions(first Comparison) *Conditions {
	return &Conditions{Leaves: []Comparison{first}}
}

// Add appends a comparison at the tail of the chain.
func (c *Conditions) Add(l Logical, next Comparison) {
	c.Connectives = append(c.Connectives, l)
	c.Leaves = append(c.Leaves, next)
}

// Len returns the number of comparisons in the chain.
func (c *Conditions) Len() int { return len(c.Leaves) }

func (c *Conditions) String() string {
	var sb strings.Builder
	for i, leaf := range c.Leaves {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(strings.ToUpper(c.Connectives[i-1].String()))
			sb.WriteString(" ")
		}
		sb.WriteString(leaf.String())
	}
	return sb.String()
}

// SelectStatement is the parsed form of one statement. It is not modified
// after parsing.
type SelectStatement struct {
	Aggregation Aggregation
	Targets     []string
	Source      DataSource
	Conditions  *Conditions // nil when there is no WHERE clause
	Wildcard    bool        // targets were expanded from '*'
}

func (s *SelectStatement) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	switch {
	case s.Wildcard:
		sb.WriteString("*")
	case s.Aggregation != AggregateNone:
		sb.WriteString(s.Aggregation.Label(strings.Join(s.Targets, ", ")))
	default:
		sb.WriteString(strings.Join(s.Targets, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.Source.String())
	if s.Conditions != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.Conditions.String())
	}
	return sb.String()
}
