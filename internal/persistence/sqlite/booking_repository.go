package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/scheduler"
)

const bookingColumns = `id, room_id, booking_date, start_minute, end_minute, duration_minutes, title,
	requester_name, requester_id, status, external_event_id, created_at, updated_at`

// BookingRepository implements persistence.BookingRepository using SQLite.
// Availability checks and the writes they guard run in one transaction while mu
// is held, so concurrent writers in this process are serialized.
type BookingRepository struct {
	mu     sync.Mutex
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository
func NewBookingRepository(pool *ConnectionPool, retry *RetryHelper) *BookingRepository {
	return &BookingRepository{pool: pool, retry: retry, mapper: NewErrorMapper()}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CheckAvailability reports whether slot is free of other active bookings.
func (r *BookingRepository) CheckAvailability(ctx context.Context, slot scheduler.Slot, excludeID string) (bool, error) {
	free, err := available(ctx, r.pool.DB(), slot, excludeID)
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return free, nil
}

// CreateBooking inserts booking if guard is free.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking, guard scheduler.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.Status == "" {
		booking.Status = scheduler.StatusActive
	}
	booking.DurationMinutes = int(booking.End - booking.Start)

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			free, err := available(ctx, tx, guard, booking.ID)
			if err != nil {
				return err
			}
			if !free {
				return persistence.ErrConflict
			}

			_, err = tx.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				booking.ID,
				booking.RoomID,
				booking.Date.String(),
				int(booking.Start),
				int(booking.End),
				booking.DurationMinutes,
				booking.Title,
				booking.RequesterName,
				booking.RequesterID,
				string(booking.Status),
				booking.ExternalEventID,
				formatTime(booking.CreatedAt),
				formatTime(booking.UpdatedAt),
			)
			return err
		})
	})
}

// MoveBooking rewrites date and window of an active booking if the guard is free.
func (r *BookingRepository) MoveBooking(ctx context.Context, params persistence.MoveParams) (persistence.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated persistence.Booking
	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := activeBooking(ctx, tx, params.BookingID); err != nil {
				return err
			}
			free, err := available(ctx, tx, params.Guard, params.BookingID)
			if err != nil {
				return err
			}
			if !free {
				return persistence.ErrConflict
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE bookings
				SET booking_date = ?, start_minute = ?, end_minute = ?, duration_minutes = ?, updated_at = ?
				WHERE id = ?`,
				params.Date.String(),
				int(params.Start),
				int(params.End),
				int(params.End-params.Start),
				formatTime(params.UpdatedAt),
				params.BookingID,
			); err != nil {
				return err
			}
			updated, err = getBooking(ctx, tx, params.BookingID)
			return err
		})
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return updated, nil
}

// ExtendBooking moves the end of an active booking if the added window is free.
func (r *BookingRepository) ExtendBooking(ctx context.Context, params persistence.ExtendParams) (persistence.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated persistence.Booking
	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			current, err := activeBooking(ctx, tx, params.BookingID)
			if err != nil {
				return err
			}
			free, err := available(ctx, tx, params.Guard, params.BookingID)
			if err != nil {
				return err
			}
			if !free {
				return persistence.ErrConflict
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE bookings SET end_minute = ?, duration_minutes = ?, updated_at = ? WHERE id = ?`,
				int(params.End),
				int(params.End-current.Start),
				formatTime(params.UpdatedAt),
				params.BookingID,
			); err != nil {
				return err
			}
			updated, err = getBooking(ctx, tx, params.BookingID)
			return err
		})
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return updated, nil
}

// CancelBooking transitions an active booking to cancelled.
func (r *BookingRepository) CancelBooking(ctx context.Context, id string, at time.Time) (persistence.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated persistence.Booking
	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := activeBooking(ctx, tx, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
				string(scheduler.StatusCancelled), formatTime(at), id,
			); err != nil {
				return err
			}
			var err error
			updated, err = getBooking(ctx, tx, id)
			return err
		})
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return updated, nil
}

// CompleteEndedBookings marks active bookings that ended by (date, minute) as completed.
func (r *BookingRepository) CompleteEndedBookings(ctx context.Context, date scheduler.Date, minute scheduler.ClockTime, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `
			UPDATE bookings
			SET status = ?, updated_at = ?
			WHERE status = ? AND (booking_date < ? OR (booking_date = ? AND end_minute <= ?))`,
			string(scheduler.StatusCompleted),
			formatTime(at),
			string(scheduler.StatusActive),
			date.String(),
			date.String(),
			int(minute),
		)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return int(affected), err
}

// GetBooking retrieves a booking in any status.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	booking, err := getBooking(ctx, r.pool.DB(), id)
	if err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ListBookingsByDate returns active bookings on date ordered by start.
func (r *BookingRepository) ListBookingsByDate(ctx context.Context, date scheduler.Date) ([]persistence.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE booking_date = ? AND status = ?
		ORDER BY start_minute ASC, id ASC`,
		date.String(), string(scheduler.StatusActive),
	)
}

// ListBookingsForRequester returns the requester's active bookings within [from, to].
func (r *BookingRepository) ListBookingsForRequester(ctx context.Context, requesterID string, from, to *scheduler.Date) ([]persistence.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE requester_id = ? AND status = ?`
	args := []any{requesterID, string(scheduler.StatusActive)}
	if from != nil {
		query += ` AND booking_date >= ?`
		args = append(args, from.String())
	}
	if to != nil {
		query += ` AND booking_date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY booking_date ASC, start_minute ASC, id ASC`
	return r.list(ctx, query, args...)
}

// SetExternalEventID records the calendar event created for a booking.
func (r *BookingRepository) SetExternalEventID(ctx context.Context, id, eventID string) error {
	var affected int64
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `UPDATE bookings SET external_event_id = ? WHERE id = ?`, eventID, id)
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

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

func available(ctx context.Context, q queryer, slot scheduler.Slot, excludeID string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE room_id = ? AND booking_date = ? AND status = ? AND id <> ?
		  AND start_minute < ? AND end_minute > ?`,
		slot.RoomID,
		slot.Date.String(),
		string(scheduler.StatusActive),
		excludeID,
		int(slot.End),
		int(slot.Start),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func activeBooking(ctx context.Context, q queryer, id string) (persistence.Booking, error) {
	booking, err := getBooking(ctx, q, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, err
	}
	if !booking.Status.CanTransitionTo(scheduler.StatusCancelled) {
		return persistence.Booking{}, persistence.ErrInvalidTransition
	}
	return booking, nil
}

func getBooking(ctx context.Context, q queryer, id string) (persistence.Booking, error) {
	return scanBooking(q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking              persistence.Booking
		date, status         string
		start, end           int
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&date,
		&start,
		&end,
		&booking.DurationMinutes,
		&booking.Title,
		&booking.RequesterName,
		&booking.RequesterID,
		&status,
		&booking.ExternalEventID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Booking{}, err
	}

	var err error
	if booking.Date, err = scheduler.ParseDate(date); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse booking_date: %w", err)
	}
	if booking.Status, err = scheduler.ParseBookingStatus(status); err != nil {
		return persistence.Booking{}, err
	}
	booking.Start = scheduler.ClockTime(start)
	booking.End = scheduler.ClockTime(end)
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return booking, nil
}
