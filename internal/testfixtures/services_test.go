package testfixtures

import (
	"context"
	"testing"

	"github.com/example/roombot/internal/application"
	"github.com/example/roombot/internal/persistence/memory"
)

func TestServiceFactoryNewRoomService(t *testing.T) {
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("room")))
	store := memory.New()

	svc := factory.NewRoomService(RoomServiceDeps{Rooms: store})
	room, err := svc.CreateRoom(context.Background(), application.CreateRoomParams{
		Principal: application.Principal{UserID: "admin", IsAdmin: true},
		Input:     application.RoomInput{Code: "A", Name: "Alpha", Capacity: 6},
	})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	if room.ID != "ROOM001" {
		t.Fatalf("expected generated ID ROOM001, got %q", room.ID)
	}
	if !room.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), room.CreatedAt)
	}
}

func TestCommandHarnessBooksWithDeterministicIDs(t *testing.T) {
	h := NewCommandHarness(t, application.CommandServiceDeps{})

	result := h.Handle("alice", "book a tomorrow 10:00 60 sync")
	if !result.Success {
		t.Fatalf("expected booking to succeed, got %q", result.Message)
	}
	view, ok := result.Data.(application.BookingView)
	if !ok {
		t.Fatalf("expected BookingView data, got %T", result.Data)
	}
	if view.ID != "BK001" || view.RoomCode != "A" {
		t.Fatalf("unexpected booking view %+v", view)
	}
}
