package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/corvran/adventure-gm/internal/adventure"
)

// PostgresStore is the optional shared backing for the Adventure Index,
// used when DATABASE_URL points at a Postgres instance. It does not create
// its schema; Migrate (migrate.go) applies it, and no command in this
// module calls Migrate.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool against dsn. It does not run
// migrations; queries fail unless the schema that Migrate (migrate.go)
// applies is already in place.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// UpsertAdventure implements adventure.IndexWriter.
func (s *PostgresStore) UpsertAdventure(r adventure.IndexRow) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO adventures (id, created_at, last_active_at, scene, theme, player_ref, world_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   last_active_at = EXCLUDED.last_active_at,
		   scene = EXCLUDED.scene,
		   theme = EXCLUDED.theme,
		   player_ref = EXCLUDED.player_ref,
		   world_ref = EXCLUDED.world_ref`,
		r.ID, r.CreatedAt, r.LastActiveAt, r.Scene, r.Theme, r.PlayerRef, r.WorldRef,
	)
	return err
}

// List returns every adventure last active at or after since, newest first.
func (s *PostgresStore) List(ctx context.Context, since time.Time) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, last_active_at, scene, theme, player_ref, world_ref
		 FROM adventures WHERE last_active_at >= $1 ORDER BY last_active_at DESC`,
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

func (s *PostgresStore) Close() error { return s.db.Close() }
