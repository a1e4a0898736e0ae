// Package catalog defines the music-catalogue record kinds a statement can read
// and the named-attribute access they expose to the query engine.
package catalog

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/spotql/internal/value"
)

// KeyAccess is implemented by every record kind.
type KeyAccess interface {
	// Access returns the named attribute as a typed value.
	Access(name string) (value.Value, error)
	// Attributes lists every attribute name the record kind exposes.
	Attributes() []string
}

// AttributeError reports an attribute name that a record kind does not have.
type AttributeError struct {
	Kind string
	Name string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("syntax error: %s has no attribute %q", e.Kind, e.Name)
}

// field maps one attribute name onto a getter of T.
type field[T any] struct {
	name string
	get  func(*T) value.Value
}

// table is the static attribute inventory of a record kind. Keeping names and
// getters together makes Attributes and Access agree by construction.
type table[T any] struct {
	kind   string
	fields []field[T]
}

func (t table[T]) names() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.name
	}
	return names
}

func (t table[T]) access(rec *T, name string) (value.Value, error) {
	for _, f := range t.fields {
		if strings.EqualFold(f.name, name) {
			return f.get(rec), nil
		}
	}
	return value.Value{}, &AttributeError{Kind: t.kind, Name: name}
}

// uniqueArtists collects artist names across tracks in first-seen order.
func uniqueArtists(tracks []Track) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tr := range tracks {
		for _, name := range tr.ArtistNames {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func trackNames(tracks []Track) []string {
	out := make([]string, len(tracks))
	for i, tr := range tracks {
		out[i] = tr.Name
	}
	return out
}

func totalDuration(tracks []Track) int64 {
	var total int64
	for _, tr := range tracks {
		total += tr.DurationMs
	}
	return total
}

// meanPopularity is the integer mean of track popularity, 0 for no tracks.
func meanPopularity(tracks []Track) int64 {
	if len(tracks) == 0 {
		return 0
	}
	var sum int64
	for _, tr := range tracks {
		sum += tr.Popularity
	}
	return sum / int64(len(tracks))
}
