package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/value"
)

func testLibrary() *catalog.Library {
	roadTrip := catalog.Playlist{
		ID:   "pl1",
		Name: "Road Trip",
		Tracks: []catalog.Track{
			{ID: "t1", Name: "Cornerstone", Popularity: 40, DurationMs: 197000, ArtistNames: []string{"Arctic Monkeys"}},
			{ID: "t2", Name: "Go With the Flow", Popularity: 60, DurationMs: 187000, ArtistNames: []string{"Queens of the Stone Age"}},
			{ID: "t3", Name: "Reptilia", Popularity: 85, DurationMs: 221000, ArtistNames: []string{"The Strokes"}},
			{ID: "t4", Name: "Mr. Brightside", Popularity: 95, DurationMs: 222000, ArtistNames: []string{"The Killers"}},
		},
	}
	gym := catalog.Playlist{
		ID:   "pl2",
		Name: "Gym",
		Tracks: []catalog.Track{
			{ID: "t5", Name: "R U Mine?", Popularity: 78, ArtistNames: []string{"Arctic Monkeys"}},
		},
	}
	loud := catalog.Playlist{
		ID:   "pl3",
		Name: "ROAD",
		Tracks: []catalog.Track{
			{ID: "t6", Name: "Song 2", Popularity: 80, ArtistNames: []string{"Blur"}},
		},
	}
	am := catalog.Album{
		ID:          "al1",
		Name:        "AM",
		ArtistNames: []string{"Arctic Monkeys"},
		Tracks: []catalog.Track{
			{ID: "t7", Name: "Do I Wanna Know?", Popularity: 84},
			{ID: "t8", Name: "Arabella", Popularity: 77},
		},
	}
	return &catalog.Library{
		Playlists:    []catalog.Playlist{roadTrip, gym, loud},
		Albums:       []catalog.Album{am},
		HasPlaylists: true,
		HasAlbums:    true,
	}
}

func run(t *testing.T, input string, lib *catalog.Library) (*Result, error) {
	t.Helper()
	stmt, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return Run(stmt, lib)
}

func TestRunProjection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]value.Value
	}{
		{
			name:  "all playlists",
			input: "SELECT id, name FROM PLAYLISTS;",
			want: [][]value.Value{
				{value.Str("pl1"), value.Str("Road Trip")},
				{value.Str("pl2"), value.Str("Gym")},
				{value.Str("pl3"), value.Str("ROAD")},
			},
		},
		{
			name:  "range over playlist tracks",
			input: `SELECT name FROM PLAYLIST("Road Trip") WHERE popularity > 50 AND popularity < 90;`,
			want: [][]value.Value{
				{value.Str("Go With the Flow")},
				{value.Str("Reptilia")},
			},
		},
		{
			name:  "like lowercases the attribute only",
			input: `SELECT id FROM PLAYLISTS WHERE name LIKE "road";`,
			want: [][]value.Value{
				{value.Str("pl1")},
				{value.Str("pl3")},
			},
		},
		{
			name:  "capitalised like probe matches nothing",
			input: `SELECT id FROM PLAYLISTS WHERE name LIKE "Road";`,
			want:  [][]value.Value{},
		},
		{
			name:  "album tracks by loose name",
			input: `SELECT name FROM ALBUM(am) WHERE popularity >= 80;`,
			want: [][]value.Value{
				{value.Str("Do I Wanna Know?")},
			},
		},
		{
			name:  "not in",
			input: `SELECT name FROM PLAYLIST("Road Trip") WHERE name NOT IN ["Reptilia", "Mr. Brightside"];`,
			want: [][]value.Value{
				{value.Str("Cornerstone")},
				{value.Str("Go With the Flow")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := run(t, tt.input, testLibrary())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, result.Rows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
			if result.Count() != len(tt.want) {
				t.Errorf("Count() = %d, want %d", result.Count(), len(tt.want))
			}
		})
	}
}

func TestRunWildcardProjectsEveryAttribute(t *testing.T) {
	result, err := run(t, "SELECT * FROM ALBUMS;", testLibrary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
	if got, want := len(result.Rows[0]), len(catalog.AlbumAttributes()); got != want {
		t.Errorf("row has %d columns, want %d", got, want)
	}
}

func TestRunAggregations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Aggregate
	}{
		{
			name:  "count membership",
			input: `SELECT COUNT(name) FROM PLAYLISTS WHERE "Arctic Monkeys" IN artists;`,
			want:  []Aggregate{{Target: "name", Value: value.Int(2)}},
		},
		{
			name:  "count repeats per target",
			input: `SELECT COUNT(name, id) FROM PLAYLIST("Road Trip");`,
			want: []Aggregate{
				{Target: "name", Value: value.Int(4)},
				{Target: "id", Value: value.Int(4)},
			},
		},
		{
			name:  "count with no matches",
			input: `SELECT COUNT(name) FROM PLAYLISTS WHERE name == "Nope";`,
			want:  []Aggregate{{Target: "name", Value: value.Int(0)}},
		},
		{
			name:  "average",
			input: `SELECT AVERAGE(popularity) FROM PLAYLIST("Road Trip");`,
			want:  []Aggregate{{Target: "popularity", Value: value.Float(70)}},
		},
		{
			name:  "average of filtered rows",
			input: `SELECT AVERAGE(popularity) FROM ALBUM("AM") WHERE popularity < 100;`,
			want:  []Aggregate{{Target: "popularity", Value: value.Float(80.5)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := run(t, tt.input, testLibrary())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, result.Aggregates); diff != "" {
				t.Errorf("aggregates mismatch (-want +got):\n%s", diff)
			}
			if result.Rows != nil {
				t.Errorf("aggregations should not project rows, got %v", result.Rows)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		lib      *catalog.Library
		wantCode string
		wantMsg  string
	}{
		{
			name:     "membership type mismatch",
			input:    `SELECT name FROM PLAYLISTS WHERE popularity IN ["a","b"];`,
			lib:      testLibrary(),
			wantCode: CodeType,
		},
		{
			name:     "average of strings",
			input:    `SELECT AVERAGE(name) FROM PLAYLISTS;`,
			lib:      testLibrary(),
			wantCode: CodeType,
		},
		{
			name:     "average of nothing",
			input:    `SELECT AVERAGE(popularity) FROM PLAYLISTS WHERE name == "Nope";`,
			lib:      testLibrary(),
			wantCode: CodeNoRows,
		},
		{
			name:     "unknown target",
			input:    `SELECT tempo FROM PLAYLISTS;`,
			lib:      testLibrary(),
			wantCode: CodeAttribute,
		},
		{
			name:     "unknown condition attribute",
			input:    `SELECT name FROM PLAYLISTS WHERE tempo > 1;`,
			lib:      testLibrary(),
			wantCode: CodeAttribute,
		},
		{
			name:     "unknown playlist",
			input:    `SELECT name FROM PLAYLIST("Nope");`,
			lib:      testLibrary(),
			wantCode: CodeSource,
			wantMsg:  "No playlist with the name Nope.",
		},
		{
			name:     "unknown album",
			input:    `SELECT name FROM ALBUM("Nope");`,
			lib:      testLibrary(),
			wantCode: CodeSource,
			wantMsg:  "No saved album with the name Nope.",
		},
		{
			name:     "playlists not fetched",
			input:    `SELECT name FROM PLAYLISTS;`,
			lib:      &catalog.Library{HasAlbums: true},
			wantCode: CodeSource,
			wantMsg:  "Playlist data not fetched.",
		},
		{
			name:     "albums not fetched",
			input:    `SELECT name FROM ALBUMS;`,
			lib:      nil,
			wantCode: CodeSource,
			wantMsg:  "Saved album data not fetched.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.input, tt.lib)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := Classify(err); code != tt.wantCode {
				t.Errorf("Classify = %s, want %s (err: %v)", code, tt.wantCode, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRunDoesNotModifyLibrary(t *testing.T) {
	lib := testLibrary()
	before := testLibrary()
	if _, err := run(t, `SELECT name FROM PLAYLIST("Road Trip") WHERE popularity > 50;`, lib); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(before, lib); diff != "" {
		t.Errorf("library changed (-before +after):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&LexError{Message: "x"}, CodeLex},
		{&SyntaxError{Message: "x"}, CodeSyntax},
		{&catalog.AttributeError{Kind: "Track", Name: "x"}, CodeAttribute},
		{value.NewTypeError("x"), CodeType},
		{&SourceError{Message: "x"}, CodeSource},
		{ErrNoRowsToAverage, CodeNoRows},
		{errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
