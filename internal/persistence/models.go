package persistence

import (
	"time"

	"github.com/example/roombot/internal/scheduler"
)

// Room represents a bookable meeting room.
type Room struct {
	ID            string
	Code          string
	Name          string
	Capacity      int
	Location      string
	AutoAccept    bool
	CalendarID    string
	ResourceEmail string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Booking is one reservation of a room for a contiguous window on one day.
type Booking struct {
	ID              string
	RoomID          string
	Date            scheduler.Date
	Start           scheduler.ClockTime
	End             scheduler.ClockTime
	DurationMinutes int
	Title           string
	RequesterName   string
	RequesterID     string
	Status          scheduler.BookingStatus
	ExternalEventID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Slot returns the occupancy window of the booking.
func (b Booking) Slot() scheduler.Slot {
	return scheduler.Slot{BookingID: b.ID, RoomID: b.RoomID, Date: b.Date, Start: b.Start, End: b.End}
}

// AuditEntry records one processed command.
type AuditEntry struct {
	ID            int64
	RequesterName string
	RequesterID   string
	RawText       string
	CommandKind   string
	Success       bool
	Response      string
	ErrorDetail   string
	SourceAddr    string
	ElapsedMS     int64
	CreatedAt     time.Time
}
