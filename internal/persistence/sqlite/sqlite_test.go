package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/persistence/sqlite"
)

func TestStorage_MigrateEmbeddedSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := sqlite.Open(filepath.Join(t.TempDir(), "roombot.db"), logger)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	for i := 0; i < 2; i++ {
		if err := storage.Migrate(ctx); err != nil {
			t.Fatalf("Migrate run %d returned error: %v", i+1, err)
		}
	}

	now := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	room := persistence.Room{ID: "room-1", Code: "A", Name: "회의실 A", Capacity: 6, CreatedAt: now, UpdatedAt: now}
	if err := storage.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	got, err := storage.GetRoomByCode(ctx, "a")
	if err != nil {
		t.Fatalf("GetRoomByCode returned error: %v", err)
	}
	if got.ID != room.ID {
		t.Fatalf("expected room %q, got %q", room.ID, got.ID)
	}
}
