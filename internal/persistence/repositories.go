package persistence

import (
	"context"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

// RoomRepository stores the room catalog. Rooms are never deleted.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	// GetRoomByCode matches the code case-insensitively.
	GetRoomByCode(ctx context.Context, code string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// MoveParams describes relocating a booking. Guard is the window that must be free
// of other active bookings; it is usually the new window padded by the buffer.
type MoveParams struct {
	BookingID string
	Date      scheduler.Date
	Start     scheduler.ClockTime
	End       scheduler.ClockTime
	Guard     scheduler.Slot
	UpdatedAt time.Time
}

// ExtendParams describes lengthening a booking to End. Guard covers only the added
// window [old end, End) plus any buffer.
type ExtendParams struct {
	BookingID string
	End       scheduler.ClockTime
	Guard     scheduler.Slot
	UpdatedAt time.Time
}

// BookingRepository stores bookings. Check-and-write operations are atomic: no two
// callers can both pass the availability check for overlapping windows.
type BookingRepository interface {
	// CheckAvailability reports whether no active booking other than excludeID
	// overlaps slot.
	CheckAvailability(ctx context.Context, slot scheduler.Slot, excludeID string) (bool, error)
	CreateBooking(ctx context.Context, booking Booking, guard scheduler.Slot) error
	MoveBooking(ctx context.Context, params MoveParams) (Booking, error)
	ExtendBooking(ctx context.Context, params ExtendParams) (Booking, error)
	CancelBooking(ctx context.Context, id string, at time.Time) (Booking, error)
	// CompleteEndedBookings marks active bookings that ended at or before
	// (date, minute) as completed and returns how many changed.
	CompleteEndedBookings(ctx context.Context, date scheduler.Date, minute scheduler.ClockTime, at time.Time) (int, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	// ListBookingsByDate returns active bookings on date ordered by start time.
	ListBookingsByDate(ctx context.Context, date scheduler.Date) ([]Booking, error)
	// ListBookingsForRequester returns the requester's active bookings between
	// from and to inclusive; nil bounds are open.
	ListBookingsForRequester(ctx context.Context, requesterID string, from, to *scheduler.Date) ([]Booking, error)
	SetExternalEventID(ctx context.Context, id, eventID string) error
}

// AuditRepository appends processed-command records.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	// ListAudit returns the newest entries first.
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}
