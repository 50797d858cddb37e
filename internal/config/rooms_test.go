package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoomSeeds(t *testing.T) {
	t.Parallel()

	t.Run("reads rooms", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "rooms.yaml")
		doc := `rooms:
  - code: A
    name: 회의실 A
    capacity: 6
    location: 3F
    auto_accept: true
  - code: B
    name: 회의실 B
    capacity: 10
    calendar_id: b@group.calendar.google.com
    resource_email: room-b@example.com
`
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("write seed file: %v", err)
		}

		seeds, err := LoadRoomSeeds(path)
		if err != nil {
			t.Fatalf("LoadRoomSeeds returned error: %v", err)
		}
		if len(seeds) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(seeds))
		}
		if seeds[0].Code != "A" || seeds[0].Capacity != 6 || !seeds[0].AutoAccept || seeds[0].Location != "3F" {
			t.Fatalf("unexpected first room: %+v", seeds[0])
		}
		if seeds[1].CalendarID != "b@group.calendar.google.com" || seeds[1].ResourceEmail != "room-b@example.com" {
			t.Fatalf("unexpected second room: %+v", seeds[1])
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := ParseRoomSeeds([]byte("rooms:\n  - code: A\n    capasity: 4\n"))
		if err == nil {
			t.Fatal("expected error for unknown key")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadRoomSeeds(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
