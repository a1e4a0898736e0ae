package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Kind names a snapshot collection.
type Kind string

const (
	KindPlaylists Kind = "playlists"
	KindAlbums    Kind = "albums"
)

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	Kind      Kind      `json:"kind"`
	FetchedAt time.Time `json:"fetched_at"`
	Bytes     int64     `json:"bytes"`
}

// SaveSnapshot replaces the snapshot of kind with payload encoded as JSON.
func (s *Store) SaveSnapshot(kind Kind, fetchedAt time.Time, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s snapshot", kind)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (kind, fetched_at, payload) VALUES (?, ?, ?)`,
		string(kind), fetchedAt.Unix(), string(data),
	)
	if err != nil {
		return errors.Wrapf(err, "save %s snapshot", kind)
	}
	return nil
}

// LoadSnapshot decodes the snapshot of kind into dst and returns when it was
// fetched. It returns ErrNoSnapshot when nothing has been saved.
func (s *Store) LoadSnapshot(kind Kind, dst interface{}) (time.Time, error) {
	var fetchedAt int64
	var payload string
	err := s.db.QueryRow(
		`SELECT fetched_at, payload FROM snapshots WHERE kind = ?`, string(kind),
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "load %s snapshot", kind)
	}

	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return time.Time{}, errors.Wrapf(err, "decode %s snapshot", kind)
	}
	return time.Unix(fetchedAt, 0), nil
}

// Snapshots lists the stored snapshots ordered by kind.
func (s *Store) Snapshots() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(
		`SELECT kind, fetched_at, length(payload) FROM snapshots ORDER BY kind`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	return scanAll(rows, func(rows *sql.Rows) (SnapshotInfo, error) {
		var info SnapshotInfo
		var kind string
		var fetchedAt int64
		if err := rows.Scan(&kind, &fetchedAt, &info.Bytes); err != nil {
			return info, err
		}
		info.Kind = Kind(kind)
		info.FetchedAt = time.Unix(fetchedAt, 0)
		return info, nil
	})
}

// DeleteSnapshots removes the given kinds, or every snapshot when none are
// given. It returns the number of rows removed.
func (s *Store) DeleteSnapshots(kinds ...Kind) (int64, error) {
	var res sql.Result
	var err error
	if len(kinds) == 0 {
		res, err = s.db.Exec(`DELETE FROM snapshots`)
	} else {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		placeholders, args := inClause(names)
		res, err = s.db.Exec(`DELETE FROM snapshots WHERE kind IN (`+placeholders+`)`, args...)
	}
	if err != nil {
		return 0, errors.Wrap(err, "delete snapshots")
	}
	return res.RowsAffected()
}
