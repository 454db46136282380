package index

import "strings"

// Open selects the Postgres backend when dsn looks like a Postgres
// connection string, otherwise opens the embedded SQLite backend at
// sqlitePath. sqlitePath is ignored when a Postgres dsn is supplied.
func Open(dsn, sqlitePath string) (Store, error) {
	if dsn != "" && (strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")) {
		return OpenPostgres(dsn)
	}
	return OpenSQLite(sqlitePath)
}
