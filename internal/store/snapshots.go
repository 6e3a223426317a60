package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when a board name has no snapshots.
var ErrNoSnapshot = errors.New("no snapshot")

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Elements  int
	Sequences int
	Size      int
}

// Snapshots is a SQLite history of documents keyed by board name.
type Snapshots struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSnapshots opens (creating when needed) the snapshot database at path.
// ":memory:" gives a private in-memory store.
func OpenSnapshots(path string) (*Snapshots, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives as long as its connection.
	db.SetMaxOpenConns(1)

	s := &Snapshots{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// SetClock overrides time.Now for snapshot timestamps.
func (s *Snapshots) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the database.
func (s *Snapshots) Close() error {
	return s.db.Close()
}

func (s *Snapshots) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			elements INTEGER NOT NULL,
			sequences INTEGER NOT NULL,
			body BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS snapshots_name ON snapshots (name, id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save stores doc as the newest snapshot of name and returns its id.
func (s *Snapshots) Save(ctx context.Context, name string, doc *Document) (int64, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO snapshots (name, created_at, elements, sequences, body) VALUES (?, ?, ?, ?, ?)",
		name, s.now().UnixMilli(), doc.ElementCount(), len(doc.PresentationSequences), buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	logger.Debug("saved snapshot", "name", name, "id", id, "bytes", buf.Len())
	return id, nil
}

// Latest returns the newest snapshot of name.
func (s *Snapshots) Latest(ctx context.Context, name string) (*Document, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT 1", name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return Decode(bytes.NewReader(body))
}

// Get returns the snapshot with the given id.
func (s *Snapshots) Get(ctx context.Context, id int64) (*Document, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT body FROM snapshots WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("id %d: %w", id, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return Decode(bytes.NewReader(body))
}

// List returns the snapshots of name, newest first. An empty name lists
// every board.
func (s *Snapshots) List(ctx context.Context, name string) ([]SnapshotInfo, error) {
	query := `SELECT id, name, created_at, elements, sequences, length(body) FROM snapshots`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var created int64
		if err := rows.Scan(&info.ID, &info.Name, &created, &info.Elements, &info.Sequences, &info.Size); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		info.CreatedAt = time.UnixMilli(created)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep snapshots of name and deletes the rest.
func (s *Snapshots) Prune(ctx context.Context, name string, keep int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE name = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT ?
		)`, name, name, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
