// Package history keeps a SQLite log of radio traffic.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"i4.energy/across/loraterm/modem"
)

// Entry is one logged message.
type Entry struct {
	ID string
	modem.Message
}

// Store wraps the SQLite database connection. It implements
// modem.Recorder.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		direction TEXT NOT NULL,
		peer INTEGER NOT NULL,
		payload TEXT NOT NULL,
		rssi INTEGER NOT NULL DEFAULT 0,
		snr INTEGER NOT NULL DEFAULT 0,
		at_unix_nano INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_at ON messages(at_unix_nano);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Record inserts one message under a fresh id.
func (s *Store) Record(ctx context.Context, m modem.Message) error {
	if m.At.IsZero() {
		m.At = time.Now()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO messages (id, direction, peer, payload, rssi, snr, at_unix_nano)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(m.Direction), m.Peer, m.Payload, m.RSSI, m.SNR, m.At.UnixNano())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Recent returns up to limit of the newest messages, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, direction, peer, payload, rssi, snr, at_unix_nano
		FROM messages ORDER BY at_unix_nano DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			dir string
			at  int64
		)
		if err := rows.Scan(&e.ID, &dir, &e.Peer, &e.Payload, &e.RSSI, &e.SNR, &at); err != nil {
			return nil, err
		}
		e.Direction = modem.Direction(dir)
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}
