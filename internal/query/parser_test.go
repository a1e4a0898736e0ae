package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/value"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *SelectStatement
	}{
		{
			name:  "plain projection",
			input: "SELECT id, name FROM PLAYLISTS;",
			want: &SelectStatement{
				Targets: []string{"id", "name"},
				Source:  PlaylistsSource(),
			},
		},
		{
			name:  "count",
			input: `SELECT COUNT(name) FROM PLAYLISTS WHERE "Arctic Monkeys" IN artists;`,
			want: &SelectStatement{
				Aggregation: AggregateCount,
				Targets:     []string{"name"},
				Source:      PlaylistsSource(),
				Conditions: &Conditions{
					Leaves: []Comparison{
						{Attribute: "artists", Op: value.In, Value: value.Str("Arctic Monkeys"), ValueFirst: true},
					},
				},
			},
		},
		{
			name:  "average with range",
			input: `SELECT AVERAGE(popularity, duration) FROM ALBUM("AM") WHERE popularity > 50 AND popularity < 90;`,
			want: &SelectStatement{
				Aggregation: AggregateAverage,
				Targets:     []string{"popularity", "duration"},
				Source:      SavedAlbumSource("AM"),
				Conditions: &Conditions{
					Leaves: []Comparison{
						{Attribute: "popularity", Op: value.Greater, Value: value.Int(50)},
						{Attribute: "popularity", Op: value.Less, Value: value.Int(90)},
					},
					Connectives: []Logical{And},
				},
			},
		},
		{
			name:  "not in",
			input: `SELECT name FROM PLAYLIST("Road Trip") WHERE artists NOT IN ["Muse", "Blur"] OR explicit == true;`,
			want: &SelectStatement{
				Targets: []string{"name"},
				Source:  PlaylistSource("Road Trip"),
				Conditions: &Conditions{
					Leaves: []Comparison{
						{Attribute: "artists", Op: value.NotIn, Value: value.List(value.Str("Muse"), value.Str("Blur"))},
						{Attribute: "explicit", Op: value.Equals, Value: value.Bool(true)},
					},
					Connectives: []Logical{Or},
				},
			},
		},
		{
			name:  "trailing tokens without WHERE are ignored",
			input: "SELECT name FROM PLAYLISTS name;",
			want: &SelectStatement{
				Targets: []string{"name"},
				Source:  PlaylistsSource(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statement mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseWildcard(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"SELECT * FROM PLAYLISTS;", catalog.PlaylistAttributes()},
		{"SELECT * FROM ALBUMS;", catalog.AlbumAttributes()},
		{`SELECT * FROM PLAYLIST("Gym");`, catalog.TrackAttributes()},
		{`SELECT * FROM ALBUM("AM");`, catalog.TrackAttributes()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !stmt.Wildcard {
				t.Error("expected Wildcard to be set")
			}
			if diff := cmp.Diff(tt.want, stmt.Targets); diff != "" {
				t.Errorf("targets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMessage string
	}{
		{
			name:        "too short",
			input:       "SELECT name FROM;",
			wantMessage: "at least 4 tokens",
		},
		{
			name:        "does not start with SELECT",
			input:       "FROM name SELECT PLAYLISTS;",
			wantMessage: "invalid token",
		},
		{
			name:        "attribute after aggregation",
			input:       "SELECT COUNT(name) id FROM PLAYLISTS;",
			wantMessage: "token should be FROM",
		},
		{
			name:        "aggregation after attribute",
			input:       "SELECT id COUNT(name) FROM PLAYLISTS;",
			wantMessage: "cannot mix aggregated",
		},
		{
			name:        "wildcard after attribute",
			input:       "SELECT id * FROM PLAYLISTS;",
			wantMessage: "cannot mix wildcard",
		},
		{
			name:        "attribute after wildcard",
			input:       "SELECT * id FROM PLAYLISTS;",
			wantMessage: "cannot mix wildcard",
		},
		{
			name:        "no targets",
			input:       "SELECT FROM PLAYLISTS WHERE;",
			wantMessage: "no attributes defined",
		},
		{
			name:        "source is not a source",
			input:       "SELECT name FROM name WHERE;",
			wantMessage: "data source",
		},
		{
			name:        "missing source",
			input:       "SELECT name id FROM;",
			wantMessage: "incomplete statement",
		},
		{
			name:        "NOT without IN",
			input:       `SELECT name FROM PLAYLISTS WHERE artists NOT LIKE "x";`,
			wantMessage: "NOT can only be used to negate an IN operation",
		},
		{
			name:        "condition missing value",
			input:       "SELECT name FROM PLAYLISTS WHERE popularity >;",
			wantMessage: "conditions should consist of",
		},
		{
			name:        "condition missing operator",
			input:       "SELECT name FROM PLAYLISTS WHERE popularity 5 >;",
			wantMessage: "missing operator",
		},
		{
			name:        "two attributes",
			input:       "SELECT name FROM PLAYLISTS WHERE popularity > duration;",
			wantMessage: "missing value",
		},
		{
			name:        "two values",
			input:       "SELECT name FROM PLAYLISTS WHERE 5 > 4;",
			wantMessage: "missing attribute",
		},
		{
			name:        "non-logical after condition",
			input:       "SELECT name FROM PLAYLISTS WHERE popularity > 5 name;",
			wantMessage: "only a logical operator",
		},
		{
			name:        "dangling logical",
			input:       "SELECT name FROM PLAYLISTS WHERE popularity > 5 AND;",
			wantMessage: "conditions should consist of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestSelectStatementString(t *testing.T) {
	stmt, err := Parse(`SELECT COUNT(name) FROM PLAYLIST("Gym") WHERE popularity >= 10 OR "Muse" IN artists;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT COUNT(name) FROM Playlist(Gym) WHERE popularity >= 10 OR "Muse" IN artists`
	if got := stmt.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
