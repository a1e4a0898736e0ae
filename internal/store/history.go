package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// HistoryEntry is one executed statement.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Statement string    `json:"statement"`
	RanAt     time.Time `json:"ran_at"`
	Code      string    `json:"code,omitempty"`
	RowCount  int       `json:"row_count"`
}

// AddHistory appends an entry and returns its ID.
func (s *Store) AddHistory(e HistoryEntry) (int64, error) {
	if e.RanAt.IsZero() {
		e.RanAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO history (statement, ran_at, code, row_count) VALUES (?, ?, ?, ?)`,
		e.Statement, e.RanAt.Unix(), e.Code, e.RowCount,
	)
	if err != nil {
		return 0, errors.Wrap(err, "record history")
	}
	return res.LastInsertId()
}

// History returns up to limit entries, newest first. A limit of 0 or less
// returns everything.
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	query := `SELECT id, statement, ran_at, code, row_count FROM history ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "read history")
	}
	return scanAll(rows, func(rows *sql.Rows) (HistoryEntry, error) {
		var e HistoryEntry
		var ranAt int64
		if err := rows.Scan(&e.ID, &e.Statement, &ranAt, &e.Code, &e.RowCount); err != nil {
			return e, err
		}
		e.RanAt = time.Unix(ranAt, 0)
		return e, nil
	})
}

// ClearHistory deletes every history entry.
func (s *Store) ClearHistory() error {
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return errors.Wrap(err, "clear history")
	}
	return nil
}
