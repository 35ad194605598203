package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening record store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating record store %s: %w", path, err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            event_id TEXT NOT NULL,
            path_json TEXT NOT NULL,
            direction TEXT NOT NULL,
            event TEXT NOT NULL,
            payload_json TEXT NOT NULL,
            at_unix_nano INTEGER NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	path, err := json.Marshal(r.Path)
	if err != nil {
		return err
	}
	payload := r.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (event_id, path_json, direction, event, payload_json, at_unix_nano)
         VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, string(path), r.Direction, r.Event, string(payload), r.At.UnixNano())
	if err != nil {
		return fmt.Errorf("appending record %s: %w", r.ID, err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, path_json, direction, event, payload_json, at_unix_nano
         FROM records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			path    string
			payload string
			at      int64
		)
		if err := rows.Scan(&r.ID, &path, &r.Direction, &r.Event, &payload, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(path), &r.Path); err != nil {
			return nil, fmt.Errorf("decoding path of record %s: %w", r.ID, err)
		}
		if r.Path == nil {
			r.Path = []int{}
		}
		r.Payload = json.RawMessage(payload)
		r.At = time.Unix(0, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM records`)
	return err
}

// Close implements Store. Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
