package catalog

import "github.com/aidanlsb/spotql/internal/value"

// Playlist is one of the user's playlists together with its tracks.
type Playlist struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Owner         string  `json:"owner"`
	Public        bool    `json:"public"`
	Collaborative bool    `json:"collaborative"`
	SnapshotID    string  `json:"snapshot_id"`
	TrackCount    int64   `json:"track_count"`
	Tracks        []Track `json:"tracks"`
}

var playlistTable = table[Playlist]{
	kind: "Playlist",
	fields: []field[Playlist]{
		{"id", func(p *Playlist) value.Value { return value.Str(p.ID) }},
		{"name", func(p *Playlist) value.Value { return value.Str(p.Name) }},
		{"description", func(p *Playlist) value.Value { return value.Str(p.Description) }},
		{"owner", func(p *Playlist) value.Value { return value.Str(p.Owner) }},
		{"public", func(p *Playlist) value.Value { return value.Bool(p.Public) }},
		{"collaborative", func(p *Playlist) value.Value { return value.Bool(p.Collaborative) }},
		{"snapshot_id", func(p *Playlist) value.Value { return value.Str(p.SnapshotID) }},
		{"track_count", func(p *Playlist) value.Value { return value.Int(p.TrackCount) }},
		{"tracks", func(p *Playlist) value.Value { return value.Strings(trackNames(p.Tracks)) }},
		{"artists", func(p *Playlist) value.Value { return value.Strings(uniqueArtists(p.Tracks)) }},
		{"duration", func(p *Playlist) value.Value { return value.Int(totalDuration(p.Tracks)) }},
		{"popularity", func(p *Playlist) value.Value { return value.Int(meanPopularity(p.Tracks)) }},
	},
}

// PlaylistAttributes is the attribute inventory of playlists.
func PlaylistAttributes() []string { return playlistTable.names() }

// Access implements KeyAccess.
func (p Playlist) Access(name string) (value.Value, error) { return playlistTable.access(&p, name) }

// Attributes implements KeyAccess.
func (Playlist) Attributes() []string { return PlaylistAttributes() }
