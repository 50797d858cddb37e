// Package memory implements the persistence repositories on in-process maps.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/scheduler"
)

// Storage keeps rooms, bookings and audit entries in memory. A single mutex
// serializes every write, so availability checks and the writes they guard are atomic.
type Storage struct {
	mu       sync.RWMutex
	rooms    map[string]persistence.Room
	bookings map[string]persistence.Booking
	audit    []persistence.AuditEntry
}

var (
	_ persistence.RoomRepository    = (*Storage)(nil)
	_ persistence.BookingRepository = (*Storage)(nil)
	_ persistence.AuditRepository   = (*Storage)(nil)
)

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		rooms:    make(map[string]persistence.Room),
		bookings: make(map[string]persistence.Booking),
	}
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueRoomLocked(room); err != nil {
		return err
	}

	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom replaces an existing room.
func (s *Storage) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueRoomLocked(room); err != nil {
		return err
	}

	room.CreatedAt = existing.CreatedAt
	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// GetRoomByCode retrieves a room by its code, ignoring case.
func (s *Storage) GetRoomByCode(ctx context.Context, code string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, room := range s.rooms {
		if strings.EqualFold(room.Code, code) {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

// ListRooms returns all rooms ordered by code.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return strings.ToLower(rooms[i].Code) < strings.ToLower(rooms[j].Code)
	})
	return rooms, nil
}

func (s *Storage) ensureUniqueRoomLocked(room persistence.Room) error {
	for id, existing := range s.rooms {
		if id == room.ID {
			continue
		}
		if strings.EqualFold(existing.Code, room.Code) {
			return persistence.ErrDuplicate
		}
		if room.ResourceEmail != "" && strings.EqualFold(existing.ResourceEmail, room.ResourceEmail) {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- BookingRepository implementation ---

// CheckAvailability reports whether slot is free of other active bookings.
func (s *Storage) CheckAvailability(ctx context.Context, slot scheduler.Slot, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.availableLocked(slot, excludeID), nil
}

// CreateBooking inserts booking after confirming guard is free.
func (s *Storage) CreateBooking(ctx context.Context, booking persistence.Booking, guard scheduler.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[booking.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.bookings[booking.ID]; ok {
		return persistence.ErrDuplicate
	}
	if booking.End <= booking.Start || booking.End > scheduler.EndOfDay {
		return persistence.ErrConstraintViolation
	}
	if !s.availableLocked(guard, booking.ID) {
		return persistence.ErrConflict
	}

	booking.DurationMinutes = int(booking.End - booking.Start)
	if booking.Status == "" {
		booking.Status = scheduler.StatusActive
	}
	s.bookings[booking.ID] = booking
	return nil
}

// MoveBooking rewrites the booking's date and window after confirming the guard is free.
func (s *Storage) MoveBooking(ctx context.Context, params persistence.MoveParams) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.activeLocked(params.BookingID)
	if err != nil {
		return persistence.Booking{}, err
	}
	if params.End <= params.Start || params.End > scheduler.EndOfDay {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}
	if !s.availableLocked(params.Guard, booking.ID) {
		return persistence.Booking{}, persistence.ErrConflict
	}

	booking.Date = params.Date
	booking.Start = params.Start
	booking.End = params.End
	booking.DurationMinutes = int(params.End - params.Start)
	booking.UpdatedAt = params.UpdatedAt
	s.bookings[booking.ID] = booking
	return booking, nil
}

// ExtendBooking moves the booking's end after confirming the added window is free.
func (s *Storage) ExtendBooking(ctx context.Context, params persistence.ExtendParams) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.activeLocked(params.BookingID)
	if err != nil {
		return persistence.Booking{}, err
	}
	if params.End <= booking.Start || params.End > scheduler.EndOfDay {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}
	if !s.availableLocked(params.Guard, booking.ID) {
		return persistence.Booking{}, persistence.ErrConflict
	}

	booking.End = params.End
	booking.DurationMinutes = int(params.End - booking.Start)
	booking.UpdatedAt = params.UpdatedAt
	s.bookings[booking.ID] = booking
	return booking, nil
}

// CancelBooking transitions an active booking to cancelled.
func (s *Storage) CancelBooking(ctx context.Context, id string, at time.Time) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.activeLocked(id)
	if err != nil {
		return persistence.Booking{}, err
	}
	booking.Status = scheduler.StatusCancelled
	booking.UpdatedAt = at
	s.bookings[id] = booking
	return booking, nil
}

// CompleteEndedBookings marks active bookings that ended by (date, minute) as completed.
func (s *Storage) CompleteEndedBookings(ctx context.Context, date scheduler.Date, minute scheduler.ClockTime, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, booking := range s.bookings {
		if booking.Status != scheduler.StatusActive {
			continue
		}
		if booking.Date.Before(date) || (booking.Date == date && booking.End <= minute) {
			booking.Status = scheduler.StatusCompleted
			booking.UpdatedAt = at
			s.bookings[id] = booking
			count++
		}
	}
	return count, nil
}

// GetBooking retrieves a booking in any status.
func (s *Storage) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

// ListBookingsByDate returns active bookings on date ordered by start.
func (s *Storage) ListBookingsByDate(ctx context.Context, date scheduler.Date) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []persistence.Booking
	for _, booking := range s.bookings {
		if booking.Status == scheduler.StatusActive && booking.Date == date {
			bookings = append(bookings, booking)
		}
	}
	sortBookings(bookings)
	return bookings, nil
}

// ListBookingsForRequester returns the requester's active bookings within [from, to].
func (s *Storage) ListBookingsForRequester(ctx context.Context, requesterID string, from, to *scheduler.Date) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []persistence.Booking
	for _, booking := range s.bookings {
		if booking.Status != scheduler.StatusActive || booking.RequesterID != requesterID {
			continue
		}
		if from != nil && booking.Date.Before(*from) {
			continue
		}
		if to != nil && booking.Date.After(*to) {
			continue
		}
		bookings = append(bookings, booking)
	}
	sortBookings(bookings)
	return bookings, nil
}

// SetExternalEventID records the calendar event created for a booking.
func (s *Storage) SetExternalEventID(ctx context.Context, id, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.ErrNotFound
	}
	booking.ExternalEventID = eventID
	s.bookings[id] = booking
	return nil
}

func (s *Storage) activeLocked(id string) (persistence.Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	if !booking.Status.CanTransitionTo(scheduler.StatusCancelled) {
		return persistence.Booking{}, persistence.ErrInvalidTransition
	}
	return booking, nil
}

func (s *Storage) availableLocked(slot scheduler.Slot, excludeID string) bool {
	for id, booking := range s.bookings {
		if id == excludeID || booking.Status != scheduler.StatusActive {
			continue
		}
		if booking.Slot().Overlaps(slot) {
			return false
		}
	}
	return true
}

// --- AuditRepository implementation ---

// AppendAudit stores entry and assigns it the next sequence number.
func (s *Storage) AppendAudit(ctx context.Context, entry persistence.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = int64(len(s.audit) + 1)
	s.audit = append(s.audit, entry)
	return nil
}

// ListAudit returns up to limit entries, newest first.
func (s *Storage) ListAudit(ctx context.Context, limit int) ([]persistence.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.audit) {
		limit = len(s.audit)
	}
	entries := make([]persistence.AuditEntry, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.audit[i])
	}
	return entries, nil
}

func sortBookings(bookings []persistence.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if c := bookings[i].Date.Compare(bookings[j].Date); c != 0 {
			return c < 0
		}
		if bookings[i].Start != bookings[j].Start {
			return bookings[i].Start < bookings[j].Start
		}
		return bookings[i].ID < bookings[j].ID
	})
}
