package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/roombot/internal/persistence"
)

type roomRepoStub struct {
	createErr error
	created   []persistence.Room

	byID    map[string]persistence.Room
	getErr  error
	codeErr error

	updateErr error
	updated   []persistence.Room

	list    []persistence.Room
	listErr error
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room persistence.Room) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, room)
	return nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if r.getErr != nil {
		return persistence.Room{}, r.getErr
	}
	room, ok := r.byID[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (r *roomRepoStub) GetRoomByCode(ctx context.Context, code string) (persistence.Room, error) {
	if r.codeErr != nil {
		return persistence.Room{}, r.codeErr
	}
	for _, room := range r.byID {
		if strings.EqualFold(room.Code, code) {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

func (r *roomRepoStub) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated = append(r.updated, room)
	return nil
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.Room, len(r.list))
	copy(out, r.list)
	return out, nil
}

var adminPrincipal = Principal{UserID: "admin", IsAdmin: true}

func TestRoomService_CreateRoom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{UserID: "user"},
			Input:     RoomInput{Code: "A", Name: "Conference Room", Capacity: 10},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: adminPrincipal,
			Input:     RoomInput{Code: "two words", Name: "   ", Capacity: 0, ResourceEmail: "not an email"},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"code", "name", "capacity", "resourceEmail"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("persists rooms for administrators", func(t *testing.T) {
		repo := &roomRepoStub{}
		now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
		svc := NewRoomService(repo, func() string { return "room-1" }, func() time.Time { return now })

		created, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: adminPrincipal,
			Input: RoomInput{
				Code:          " A ",
				Name:          "  Sakura Hall  ",
				Location:      "  10F  ",
				Capacity:      25,
				ResourceEmail: "Room-A@Example.com",
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(repo.created) != 1 {
			t.Fatalf("expected one room persisted, got %d", len(repo.created))
		}
		got := repo.created[0]
		if got.ID != "room-1" || got.Code != "A" || got.Name != "Sakura Hall" || got.Location != "10F" {
			t.Fatalf("expected trimmed fields and generated id, got %+v", got)
		}
		if got.ResourceEmail != "room-a@example.com" {
			t.Fatalf("expected resource email to be lower-cased, got %q", got.ResourceEmail)
		}
		if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps to use injected clock, got created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
		}
		if created.ID != "room-1" {
			t.Fatalf("expected returned room to include generated ID, got %q", created.ID)
		}
	})

	t.Run("generates version 7 ids by default", func(t *testing.T) {
		repo := &roomRepoStub{}
		svc := NewRoomService(repo, nil, nil)

		created, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: adminPrincipal,
			Input:     RoomInput{Code: "B", Name: "Board", Capacity: 4},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		parsed, err := uuid.Parse(created.ID)
		if err != nil {
			t.Fatalf("expected a UUID, got %q: %v", created.ID, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("expected version 7, got %d", parsed.Version())
		}
	})

	t.Run("maps repository errors to sentinel failures", func(t *testing.T) {
		repo := &roomRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewRoomService(repo, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: adminPrincipal,
			Input:     RoomInput{Code: "A", Name: "Conf Room", Capacity: 10},
		})

		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestRoomService_UpdateRoom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)

		_, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: Principal{UserID: "user"},
			RoomID:    "room-1",
			Input:     RoomInput{Code: "A", Name: "Room", Capacity: 10},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound when the room is missing", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)

		_, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: adminPrincipal,
			RoomID:    "missing",
			Input:     RoomInput{Code: "A", Name: "Room", Capacity: 10},
		})

		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("persists updated attributes for administrators", func(t *testing.T) {
		createdAt := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		existing := persistence.Room{ID: "room-1", Code: "A", Name: "Sakura", Capacity: 20, CreatedAt: createdAt, UpdatedAt: createdAt}
		repo := &roomRepoStub{byID: map[string]persistence.Room{"room-1": existing}}
		now := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
		svc := NewRoomService(repo, nil, func() time.Time { return now })

		updated, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: adminPrincipal,
			RoomID:    "room-1",
			Input:     RoomInput{Code: "A", Name: "  Maple ", Location: "  11F", Capacity: 30, AutoAccept: true, CalendarID: " cal-a "},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		got := repo.updated[0]
		if got.Name != "Maple" || got.Location != "11F" || got.Capacity != 30 || !got.AutoAccept || got.CalendarID != "cal-a" {
			t.Fatalf("unexpected persisted room %+v", got)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp to use injected clock, got %v", got.UpdatedAt)
		}
		if !got.CreatedAt.Equal(createdAt) {
			t.Fatalf("expected created timestamp to remain unchanged")
		}
		if updated.ID != existing.ID {
			t.Fatalf("expected returned room to include ID, got %q", updated.ID)
		}
	})
}

func TestRoomService_ListRooms(t *testing.T) {
	t.Run("returns rooms ordered by code", func(t *testing.T) {
		repo := &roomRepoStub{list: []persistence.Room{
			{ID: "room-2", Code: "beta"},
			{ID: "room-3", Code: "Alpha"},
			{ID: "room-1", Code: "alpha"},
		}}
		svc := NewRoomService(repo, nil, nil)

		got, err := svc.ListRooms(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 || got[0].ID != "room-1" || got[1].ID != "room-3" || got[2].ID != "room-2" {
			t.Fatalf("expected case-insensitive ordering, got %+v", got)
		}
	})

	t.Run("surfaces repository failures", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewRoomService(&roomRepoStub{listErr: boom}, nil, nil)

		if _, err := svc.ListRooms(context.Background(), adminPrincipal); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}

func TestRoomService_SeedRooms(t *testing.T) {
	t.Run("creates unknown codes and updates known ones", func(t *testing.T) {
		repo := &roomRepoStub{byID: map[string]persistence.Room{
			"room-a": {ID: "room-a", Code: "A", Name: "Old", Capacity: 4},
		}}
		svc := NewRoomService(repo, func() string { return "room-b" }, nil)

		created, updated, err := svc.SeedRooms(context.Background(), adminPrincipal, []RoomInput{
			{Code: "a", Name: "Alpha", Capacity: 6},
			{Code: "B", Name: "Beta", Capacity: 8},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if created != 1 || updated != 1 {
			t.Fatalf("expected 1 created and 1 updated, got %d and %d", created, updated)
		}
		if repo.updated[0].ID != "room-a" || repo.updated[0].Name != "Alpha" {
			t.Fatalf("expected existing room to be updated in place, got %+v", repo.updated[0])
		}
		if repo.created[0].ID != "room-b" || repo.created[0].Code != "B" {
			t.Fatalf("expected new room to be created, got %+v", repo.created[0])
		}
	})

	t.Run("rejects the whole seed when any entry is invalid", func(t *testing.T) {
		repo := &roomRepoStub{}
		svc := NewRoomService(repo, nil, nil)

		_, _, err := svc.SeedRooms(context.Background(), adminPrincipal, []RoomInput{
			{Code: "A", Name: "Alpha", Capacity: 6},
			{Code: "a", Name: "Again", Capacity: 6},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(repo.created) != 0 {
			t.Fatalf("expected nothing to be written, got %d rooms", len(repo.created))
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)
		if _, _, err := svc.SeedRooms(context.Background(), Principal{}, nil); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestMapRoomRepoError(t *testing.T) {
	unexpected := errors.New("boom")

	tests := map[string]struct {
		err      error
		expected error
	}{
		"nil":                   {err: nil, expected: nil},
		"application not found": {err: ErrNotFound, expected: ErrNotFound},
		"persistence not found": {err: persistence.ErrNotFound, expected: ErrNotFound},
		"duplicate":             {err: persistence.ErrDuplicate, expected: ErrAlreadyExists},
		"unexpected":            {err: unexpected, expected: unexpected},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := mapRoomRepoError(tc.err)
			if !errors.Is(result, tc.expected) && !(result == nil && tc.expected == nil) {
				t.Fatalf("expected %v, got %v", tc.expected, result)
			}
		})
	}

	var vErr *ValidationError
	if !errors.As(mapRoomRepoError(persistence.ErrConstraintViolation), &vErr) {
		t.Fatalf("expected ValidationError for constraint violations")
	}
}
