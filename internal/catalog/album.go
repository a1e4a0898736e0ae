package catalog

import "github.com/aidanlsb/spotql/internal/value"

// Album is a saved album together with its tracks.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type"`
	Label       string   `json:"label"`
	ReleaseDate string   `json:"release_date"`
	Popularity  int64    `json:"popularity"`
	TrackCount  int64    `json:"track_count"`
	ArtistNames []string `json:"artist_names"`
	Genres      []string `json:"genres"`
	AddedAt     string   `json:"added_at"`
	Tracks      []Track  `json:"tracks"`
}

var albumTable = table[Album]{
	kind: "Album",
	fields: []field[Album]{
		{"id", func(a *Album) value.Value { return value.Str(a.ID) }},
		{"name", func(a *Album) value.Value { return value.Str(a.Name) }},
		{"album_type", func(a *Album) value.Value { return value.Str(a.AlbumType) }},
		{"label", func(a *Album) value.Value { return value.Str(a.Label) }},
		{"release_date", func(a *Album) value.Value { return value.Str(a.ReleaseDate) }},
		{"popularity", func(a *Album) value.Value { return value.Int(a.Popularity) }},
		{"track_count", func(a *Album) value.Value { return value.Int(a.TrackCount) }},
		{"artists", func(a *Album) value.Value { return value.Strings(a.ArtistNames) }},
		{"genres", func(a *Album) value.Value { return value.Strings(a.Genres) }},
		{"added_at", func(a *Album) value.Value { return value.Str(a.AddedAt) }},
		{"tracks", func(a *Album) value.Value { return value.Strings(trackNames(a.Tracks)) }},
		{"duration", func(a *Album) value.Value { return value.Int(totalDuration(a.Tracks)) }},
	},
}

// AlbumAttributes is the attribute inventory of saved albums.
func AlbumAttributes() []string { return albumTable.names() }

// Access implements KeyAccess.
func (a Album) Access(name string) (value.Value, error) { return albumTable.access(&a, name) }

// Attributes implements KeyAccess.
func (Album) Attributes() []string { return AlbumAttributes() }
