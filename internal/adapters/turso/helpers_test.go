package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/turso"
	"github.com/emiliopalmerini/mclaude-statusline/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := turso.Open(filepath.Join(t.TempDir(), "history", "statusline.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := migrate.RunAll(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
