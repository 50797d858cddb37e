package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/roombot/internal/persistence"
)

const roomColumns = `id, code, name, capacity, location, auto_accept, calendar_id, resource_email, created_at, updated_at`

// RoomRepository implements persistence.RoomRepository using SQLite
type RoomRepository struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository
func NewRoomRepository(pool *ConnectionPool, retry *RetryHelper) *RoomRepository {
	return &RoomRepository{pool: pool, retry: retry, mapper: NewErrorMapper()}
}

// CreateRoom inserts a new room. Code and resource email clashes return ErrDuplicate.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || strings.TrimSpace(room.Code) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO rooms (` + roomColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			room.ID,
			room.Code,
			room.Name,
			room.Capacity,
			room.Location,
			room.AutoAccept,
			room.CalendarID,
			nullableString(room.ResourceEmail),
			formatTime(room.CreatedAt),
			formatTime(room.UpdatedAt),
		)
		return err
	})
}

// UpdateRoom rewrites every mutable room attribute.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	query := `
		UPDATE rooms
		SET code = ?, name = ?, capacity = ?, location = ?, auto_accept = ?,
		    calendar_id = ?, resource_email = ?, updated_at = ?
		WHERE id = ?`

	var affected int64
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, query,
			room.Code,
			room.Name,
			room.Capacity,
			room.Location,
			room.AutoAccept,
			room.CalendarID,
			nullableString(room.ResourceEmail),
			formatTime(room.UpdatedAt),
			room.ID,
		)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, r.mapper.MapError(err)
	}
	return room, nil
}

// GetRoomByCode retrieves a room by code; the column collates case-insensitively.
func (r *RoomRepository) GetRoomByCode(ctx context.Context, code string) (persistence.Room, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE code = ?`, code)
	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, r.mapper.MapError(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by code.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY code ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rooms, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room                 persistence.Room
		resourceEmail        sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&room.ID,
		&room.Code,
		&room.Name,
		&room.Capacity,
		&room.Location,
		&room.AutoAccept,
		&room.CalendarID,
		&resourceEmail,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Room{}, err
	}

	room.ResourceEmail = resourceEmail.String

	var err error
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return room, nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
