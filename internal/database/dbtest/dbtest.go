// Package dbtest provides migrated in-memory databases for tests.
package dbtest

import (
	"database/sql"
	"testing"

	"shoplist/internal/database"

	_ "github.com/mattn/go-sqlite3"
)

// New returns an in-memory SQLite database with every migration applied.
// It is closed when the test finishes.
func New(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// Each connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}
