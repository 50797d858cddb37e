package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *SQLiteExecutor {
	t.Helper()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteExecutor(db)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_RunMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	files := fstest.MapFS{
		"001_create_items.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"002_add_name.sql":     {Data: []byte("ALTER TABLE items ADD COLUMN name TEXT;\nCREATE INDEX idx_items_name ON items(name);")},
	}

	executor := openTestDB(t)
	manager := NewManager(NewScanner(files, "."), executor, quietLogger())

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	// A second run has nothing to do.
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Pending) != 0 || len(status.Applied) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}

	if _, err := executor.db.ExecContext(ctx, "INSERT INTO items (id, name) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("expected migrated schema to accept insert: %v", err)
	}
}

func TestManager_FailedMigrationRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	files := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nCREATE TABLE broken (;")},
	}

	executor := openTestDB(t)
	manager := NewManager(NewScanner(files, "."), executor, quietLogger())

	var dbErr *DatabaseError
	if err := manager.RunMigrations(ctx); !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}

	applied, err := executor.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied failed: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no applied migrations, got %+v", applied)
	}
	if _, err := executor.db.ExecContext(ctx, "INSERT INTO ok (id) VALUES ('x')"); err == nil {
		t.Fatalf("expected partial migration to be rolled back")
	}
}

func TestManager_DetectsEditedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	executor := openTestDB(t)

	original := fstest.MapFS{"001_items.sql": {Data: []byte("CREATE TABLE items (id TEXT);")}}
	if err := NewManager(NewScanner(original, "."), executor, quietLogger()).RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	edited := fstest.MapFS{"001_items.sql": {Data: []byte("CREATE TABLE items (id TEXT, extra TEXT);")}}
	err := NewManager(NewScanner(edited, "."), executor, quietLogger()).RunMigrations(ctx)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}
