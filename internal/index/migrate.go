package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ResolveMigrationsDir finds the on-disk migrations directory: an explicit
// override, then ADVENTURE_GM_MIGRATIONS_DIR, then ./migrations next to
// the running executable.
func ResolveMigrationsDir(override string) string {
	if override != "" {
		return override
	}
	if v := os.Getenv("ADVENTURE_GM_MIGRATIONS_DIR"); v != "" {
		return v
	}
	exe, err := os.Executable()
	if err != nil {
		return "migrations"
	}
	return filepath.Join(filepath.Dir(exe), "migrations")
}

// Migrate applies all pending Postgres migrations from dir against dsn.
// The embedded SQLite backend manages its own schema in sqlite.go and
// never goes through this path.
func Migrate(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return fmt.Errorf("index: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("index: migrate up: %w", err)
	}
	return nil
}

// Version reports the current schema version and whether the last
// migration left the database in a dirty state.
func Version(dsn, dir string) (uint, bool, error) {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return 0, false, fmt.Errorf("index: create migrator: %w", err)
	}
	defer m.Close()
	return m.Version()
}
