package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/aidanlsb/spotql/internal/catalog"
)

// playlistTrackFields limits playlist track responses to what catalog.Track uses.
const playlistTrackFields = "next,total,items(added_at,track(id,name,duration_ms,popularity,explicit," +
	"track_number,disc_number,album(id,name,release_date),artists(id,name)))"

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type trackObject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DurationMs  int64          `json:"duration_ms"`
	Popularity  int64          `json:"popularity"`
	Explicit    bool           `json:"explicit"`
	TrackNumber int64          `json:"track_number"`
	DiscNumber  int64          `json:"disc_number"`
	Album       *albumRef      `json:"album"`
	Artists     []artistObject `json:"artists"`
}

type playlistTrackItem struct {
	AddedAt string       `json:"added_at"`
	Track   *trackObject `json:"track"` // null for removed or local items
}

type playlistObject struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	SnapshotID    string `json:"snapshot_id"`
	Owner         struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Href  string `json:"href"`
		Total int64  `json:"total"`
	} `json:"tracks"`
}

type albumObject struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	AlbumType   string            `json:"album_type"`
	Label       string            `json:"label"`
	ReleaseDate string            `json:"release_date"`
	Popularity  int64             `json:"popularity"`
	TotalTracks int64             `json:"total_tracks"`
	Genres      []string          `json:"genres"`
	Artists     []artistObject    `json:"artists"`
	Tracks      page[trackObject] `json:"tracks"`
}

type savedAlbumItem struct {
	AddedAt string      `json:"added_at"`
	Album   albumObject `json:"album"`
}

// Playlists fetches every playlist of the current user together with its tracks.
func (c *Client) Playlists(ctx context.Context) ([]catalog.Playlist, error) {
	params := url.Values{"limit": {strconv.Itoa(pageLimit)}}
	items, err := collect[playlistObject](ctx, c, c.endpoint("/me/playlists", params))
	if err != nil {
		return nil, errors.Wrap(err, "fetch playlists")
	}

	playlists := make([]catalog.Playlist, 0, len(items))
	for _, item := range items {
		tracks, err := c.PlaylistTracks(ctx, item.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch tracks of playlist %q", item.Name)
		}
		owner := item.Owner.DisplayName
		if owner == "" {
			owner = item.Owner.ID
		}
		playlists = append(playlists, catalog.Playlist{
			ID:            item.ID,
			Name:          item.Name,
			Description:   item.Description,
			Owner:         owner,
			Public:        item.Public,
			Collaborative: item.Collaborative,
			SnapshotID:    item.SnapshotID,
			TrackCount:    item.Tracks.Total,
			Tracks:        tracks,
		})
	}
	return playlists, nil
}

// PlaylistTracks fetches the tracks of one playlist. Removed and local items
// without a track object are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]catalog.Track, error) {
	params := url.Values{
		"limit":  {strconv.Itoa(pageLimit)},
		"fields": {playlistTrackFields},
	}
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	items, err := collect[playlistTrackItem](ctx, c, c.endpoint(path, params))
	if err != nil {
		return nil, err
	}

	tracks := make([]catalog.Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		t := toTrack(*item.Track, nil)
		t.AddedAt = item.AddedAt
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// SavedAlbums fetches every album in the current user's library with all of
// its tracks.
func (c *Client) SavedAlbums(ctx context.Context) ([]catalog.Album, error) {
	params := url.Values{"limit": {strconv.Itoa(pageLimit)}}
	items, err := collect[savedAlbumItem](ctx, c, c.endpoint("/me/albums", params))
	if err != nil {
		return nil, errors.Wrap(err, "fetch saved albums")
	}

	albums := make([]catalog.Album, 0, len(items))
	for _, item := range items {
		a := item.Album
		trackObjs := a.Tracks.Items
		if a.Tracks.Next != "" {
			rest, err := collect[trackObject](ctx, c, a.Tracks.Next)
			if err != nil {
				return nil, errors.Wrapf(err, "fetch tracks of album %q", a.Name)
			}
			trackObjs = append(trackObjs, rest...)
		}

		ref := &albumRef{ID: a.ID, Name: a.Name, ReleaseDate: a.ReleaseDate}
		tracks := make([]catalog.Track, len(trackObjs))
		for i, t := range trackObjs {
			tracks[i] = toTrack(t, ref)
		}

		albums = append(albums, catalog.Album{
			ID:          a.ID,
			Name:        a.Name,
			AlbumType:   a.AlbumType,
			Label:       a.Label,
			ReleaseDate: a.ReleaseDate,
			Popularity:  a.Popularity,
			TrackCount:  a.TotalTracks,
			ArtistNames: artistNames(a.Artists),
			Genres:      a.Genres,
			AddedAt:     item.AddedAt,
			Tracks:      tracks,
		})
	}
	return albums, nil
}

// toTrack maps a wire track. Album tracks come without their album, so the
// caller passes it as fallback.
func toTrack(t trackObject, fallback *albumRef) catalog.Track {
	album := t.Album
	if album == nil {
		album = fallback
	}
	out := catalog.Track{
		ID:          t.ID,
		Name:        t.Name,
		DurationMs:  t.DurationMs,
		Popularity:  t.Popularity,
		Explicit:    t.Explicit,
		TrackNumber: t.TrackNumber,
		DiscNumber:  t.DiscNumber,
		ArtistNames: artistNames(t.Artists),
	}
	for _, a := range t.Artists {
		out.ArtistIDs = append(out.ArtistIDs, a.ID)
	}
	if album != nil {
		out.AlbumID = album.ID
		out.AlbumName = album.Name
		out.ReleaseDate = album.ReleaseDate
	}
	return out
}

func artistNames(artists []artistObject) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}
