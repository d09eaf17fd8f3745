package db

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB wraps sqlx.DB with application-specific methods
type DB struct {
	*sqlx.DB
}

// New creates a new database connection and runs migrations
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, eris.Wrap(err, "db: create directory")
	}

	db, err := sqlx.Connect("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, eris.Wrap(err, "db: connect")
	}

	// Run migrations
	if err := migrate(db); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "db: run migrations")
	}

	return &DB{db}, nil
}

func migrate(db *sqlx.DB) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return eris.Wrap(err, "db: read schema")
	}

	if _, err := db.Exec(string(schema)); err != nil {
		return eris.Wrap(err, "db: execute schema")
	}

	return nil
}
