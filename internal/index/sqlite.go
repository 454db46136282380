package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/corvran/adventure-gm/internal/adventure"
)

// SQLiteStore is the default, no-cgo embedded backing for the Adventure
// Index, used whenever DATABASE_URL is not configured.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the index database at path and ensures
// its schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("index: open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: migrate sqlite: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS adventures (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		last_active_at DATETIME NOT NULL,
		scene TEXT NOT NULL DEFAULT '',
		theme TEXT NOT NULL DEFAULT '',
		player_ref TEXT NOT NULL DEFAULT '',
		world_ref TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_adventures_last_active ON adventures(last_active_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertAdventure implements adventure.IndexWriter.
func (s *SQLiteStore) UpsertAdventure(r adventure.IndexRow) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO adventures (id, created_at, last_active_at, scene, theme, player_ref, world_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   last_active_at=excluded.last_active_at,
		   scene=excluded.scene,
		   theme=excluded.theme,
		   player_ref=excluded.player_ref,
		   world_ref=excluded.world_ref`,
		r.ID, r.CreatedAt, r.LastActiveAt, r.Scene, r.Theme, r.PlayerRef, r.WorldRef,
	)
	return err
}

// List returns every adventure last active at or after since, newest first.
func (s *SQLiteStore) List(ctx context.Context, since time.Time) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, last_active_at, scene, theme, player_ref, world_ref
		 FROM adventures WHERE last_active_at >= ? ORDER BY last_active_at DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.LastActiveAt, &r.Scene, &r.Theme, &r.PlayerRef, &r.WorldRef); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
