package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/roombot/internal/persistence"
)

var roomCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,31}$`)

// RoomService orchestrates validation, authorization, and persistence for rooms.
type RoomService struct {
	rooms       persistence.RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomID returns a time-ordered UUID (version 7).
func NewRoomID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = NewRoomID
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
		"room_code", params.Input.Code,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	room = applyRoomInput(persistence.Room{ID: s.idGenerator(), CreatedAt: now}, params.Input)
	room.UpdatedAt = now

	if err = s.rooms.CreateRoom(ctx, room); err != nil {
		err = mapRoomRepoError(err)
		room = persistence.Room{}
	}
	return
}

// UpdateRoom validates input and updates an existing room for administrators.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing persistence.Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := applyRoomInput(existing, params.Input)
	updated.UpdatedAt = s.now()

	if err = s.rooms.UpdateRoom(ctx, updated); err != nil {
		err = mapRoomRepoError(err)
		return
	}
	room = updated
	return
}

// GetRoom returns one room by id.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, roomID string) (persistence.Room, error) {
	if s == nil {
		return persistence.Room{}, fmt.Errorf("RoomService is nil")
	}
	if !principal.IsAdmin {
		return persistence.Room{}, ErrUnauthorized
	}
	if s.rooms == nil {
		return persistence.Room{}, fmt.Errorf("room repository not configured")
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return persistence.Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// ListRooms returns the catalog of rooms ordered by code.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) (rooms []persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRooms",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	var raw []persistence.Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	rooms = make([]persistence.Room, len(raw))
	copy(rooms, raw)

	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Code, rooms[j].Code) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Code) < strings.ToLower(rooms[j].Code)
	})

	return
}

// SeedRooms creates rooms whose code is unknown and updates the others in place.
// Every input is validated before anything is written.
func (s *RoomService) SeedRooms(ctx context.Context, principal Principal, inputs []RoomInput) (created, updated int, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SeedRooms", "principal_id", principal.UserID, "input_count", len(inputs))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "rooms seeded", "created", created, "updated", updated)
	}()

	seen := make(map[string]struct{}, len(inputs))
	for i, input := range inputs {
		vErr := validateRoomInput(input)
		code := strings.ToLower(strings.TrimSpace(input.Code))
		if _, dup := seen[code]; dup {
			vErr.add("code", "code is repeated in seed")
		}
		seen[code] = struct{}{}
		if vErr.HasErrors() {
			err = fmt.Errorf("room seed %d (%s): %w", i, input.Code, vErr)
			return
		}
	}

	for _, input := range inputs {
		existing, getErr := s.rooms.GetRoomByCode(ctx, strings.TrimSpace(input.Code))
		switch {
		case errors.Is(getErr, persistence.ErrNotFound):
			if _, err = s.CreateRoom(ctx, CreateRoomParams{Principal: principal, Input: input}); err != nil {
				return
			}
			created++
		case getErr != nil:
			err = getErr
			return
		default:
			if _, err = s.UpdateRoom(ctx, UpdateRoomParams{Principal: principal, RoomID: existing.ID, Input: input}); err != nil {
				return
			}
			updated++
		}
	}
	return
}

func applyRoomInput(room persistence.Room, input RoomInput) persistence.Room {
	room.Code = strings.TrimSpace(input.Code)
	room.Name = strings.TrimSpace(input.Name)
	room.Capacity = input.Capacity
	room.Location = strings.TrimSpace(input.Location)
	room.AutoAccept = input.AutoAccept
	room.CalendarID = strings.TrimSpace(input.CalendarID)
	room.ResourceEmail = strings.ToLower(strings.TrimSpace(input.ResourceEmail))
	return room
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if !roomCodePattern.MatchString(strings.TrimSpace(input.Code)) {
		vErr.add("code", "code must be 1-32 letters, digits, '-' or '_'")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if email := strings.TrimSpace(input.ResourceEmail); email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			vErr.add("resourceEmail", "resource email must be a plain address")
		}
	}

	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}
