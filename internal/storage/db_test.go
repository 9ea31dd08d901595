package storage

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWithAutoMigrate(t *testing.T) {
	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// The migrated schema should expose all application tables.
	for _, table := range []string{"users", "campaign_metrics", "recommendations", "predictions", "optimization_actions"} {
		var name string
		err := db.Conn().QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist: %v", table, err)
		}
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestSchema(t *testing.T) {
	statements, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	if len(statements) == 0 {
		t.Fatal("expected at least one schema statement")
	}
	if !strings.Contains(statements[0], "CREATE TABLE") {
		t.Error("expected CREATE TABLE in schema output")
	}
}

func TestMigrationRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roll.db")

	mm, err := NewMigrationManager(path)
	if err != nil {
		t.Fatalf("failed to create migration manager: %v", err)
	}
	defer mm.Close()

	if err := mm.Up(); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if err := mm.Down(); err != nil {
		t.Fatalf("Down failed: %v", err)
	}
	// Running Up again after a rollback must succeed.
	if err := mm.Up(); err != nil {
		t.Fatalf("re-Up failed: %v", err)
	}
}
