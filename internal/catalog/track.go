package catalog

import "github.com/aidanlsb/spotql/internal/value"

// Track is a single track, either from a playlist or a saved album.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DurationMs  int64    `json:"duration_ms"`
	Popularity  int64    `json:"popularity"`
	Explicit    bool     `json:"explicit"`
	TrackNumber int64    `json:"track_number"`
	DiscNumber  int64    `json:"disc_number"`
	AlbumID     string   `json:"album_id"`
	AlbumName   string   `json:"album_name"`
	ReleaseDate string   `json:"release_date"`
	ArtistIDs   []string `json:"artist_ids"`
	ArtistNames []string `json:"artist_names"`
	AddedAt     string   `json:"added_at,omitempty"`
}

var trackTable = table[Track]{
	kind: "Track",
	fields: []field[Track]{
		{"id", func(t *Track) value.Value { return value.Str(t.ID) }},
		{"name", func(t *Track) value.Value { return value.Str(t.Name) }},
		{"duration", func(t *Track) value.Value { return value.Int(t.DurationMs) }},
		{"popularity", func(t *Track) value.Value { return value.Int(t.Popularity) }},
		{"explicit", func(t *Track) value.Value { return value.Bool(t.Explicit) }},
		{"track_number", func(t *Track) value.Value { return value.Int(t.TrackNumber) }},
		{"disc_number", func(t *Track) value.Value { return value.Int(t.DiscNumber) }},
		{"album", func(t *Track) value.Value { return value.Str(t.AlbumName) }},
		{"album_id", func(t *Track) value.Value { return value.Str(t.AlbumID) }},
		{"release_date", func(t *Track) value.Value { return value.Str(t.ReleaseDate) }},
		{"artists", func(t *Track) value.Value { return value.Strings(t.ArtistNames) }},
		{"artist_ids", func(t *Track) value.Value { return value.Strings(t.ArtistIDs) }},
		{"added_at", func(t *Track) value.Value { return value.Str(t.AddedAt) }},
	},
}

// TrackAttributes is the attribute inventory of tracks.
func TrackAttributes() []string { return trackTable.names() }

// Access implements KeyAccess.
func (t Track) Access(name string) (value.Value, error) { return trackTable.access(&t, name) }

// Attributes implements KeyAccess.
func (Track) Attributes() []string { return TrackAttributes() }
