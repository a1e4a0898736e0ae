package catalog

import (
	goslug "github.com/gosimple/slug"
)

// Library is a read-only snapshot of the collections loaded for one
// execution. A nil slice with its Has flag unset means "not fetched".
type Library struct {
	Playlists    []Playlist
	Albums       []Album
	HasPlaylists bool
	HasAlbums    bool
}

// FindPlaylist returns the playlist with the given name. An exact name match
// wins; otherwise names are compared by slug, so "road-trip" finds "Road Trip".
func (l *Library) FindPlaylist(name string) (*Playlist, bool) {
	for i := range l.Playlists {
		if l.Playlists[i].Name == name {
			return &l.Playlists[i], true
		}
	}
	key := NameKey(name)
	if key == "" {
		return nil, false
	}
	for i := range l.Playlists {
		if NameKey(l.Playlists[i].Name) == key {
			return &l.Playlists[i], true
		}
	}
	return nil, false
}

// FindAlbum returns the saved album with the given name, using the same
// matching rules as FindPlaylist.
func (l *Library) FindAlbum(name string) (*Album, bool) {
	for i := range l.Albums {
		if l.Albums[i].Name == name {
			return &l.Albums[i], true
		}
	}
	key := NameKey(name)
	if key == "" {
		return nil, false
	}
	for i := range l.Albums {
		if NameKey(l.Albums[i].Name) == key {
			return &l.Albums[i], true
		}
	}
	return nil, false
}

// NameKey normalizes a collection name for loose matching.
func NameKey(name string) string {
	return goslug.Make(name)
}
