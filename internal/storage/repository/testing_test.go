package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/adoptimizer/adoptimizer/internal/storage"
)

// setupTestDB creates an in-memory database with the full schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	statements, err := storage.Schema()
	if err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	return db
}
