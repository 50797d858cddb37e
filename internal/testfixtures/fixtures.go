package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/roombot/internal/application"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/policy"
	"github.com/example/roombot/internal/scheduler"
)

var (
	roomCounter    uint64
	bookingCounter uint64
)

var seoul = time.FixedZone("KST", 9*60*60)

// referenceTime is a Monday morning inside business hours.
var referenceTime = time.Date(2026, time.January, 5, 9, 0, 0, 0, seoul)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the calendar day of ReferenceTime.
func ReferenceDate() scheduler.Date {
	return scheduler.DateOf(referenceTime)
}

// Location returns the fixed zone fixtures are expressed in.
func Location() *time.Location {
	return seoul
}

// Policy returns the default booking policy evaluated in Location.
func Policy() policy.Policy {
	p := policy.Default()
	p.Location = seoul
	return p
}

// MustDate parses a YYYY-MM-DD literal and panics on malformed input.
func MustDate(value string) scheduler.Date {
	d, err := scheduler.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// MustClock parses an HH:mm literal and panics on malformed input.
func MustClock(value string) scheduler.ClockTime {
	if value == "24:00" {
		return scheduler.EndOfDay
	}
	c, err := scheduler.ParseClockTime(value)
	if err != nil {
		panic(err)
	}
	return c
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
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

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Code:      fmt.Sprintf("R%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  int(4 + idx%4),
		Location:  "본관",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomCode overrides the generated short code.
func WithRoomCode(code string) RoomOption {
	return func(f *RoomFixture) {
		f.Code = code
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomCalendar sets the calendar identifiers used by sync.
func WithRoomCalendar(calendarID, resourceEmail string) RoomOption {
	return func(f *RoomFixture) {
		f.CalendarID = calendarID
		f.ResourceEmail = resourceEmail
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:            f.ID,
		Code:          f.Code,
		Name:          f.Name,
		Capacity:      f.Capacity,
		Location:      f.Location,
		AutoAccept:    f.AutoAccept,
		CalendarID:    f.CalendarID,
		ResourceEmail: f.ResourceEmail,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Code:          f.Code,
		Name:          f.Name,
		Capacity:      f.Capacity,
		Location:      f.Location,
		AutoAccept:    f.AutoAccept,
		CalendarID:    f.CalendarID,
		ResourceEmail: f.ResourceEmail,
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic active booking.
type BookingFixture struct {
	ID            string
	RoomID        string
	Date          scheduler.Date
	Start         scheduler.ClockTime
	End           scheduler.ClockTime
	Title         string
	RequesterID   string
	RequesterName string
	Status        scheduler.BookingStatus
	CreatedAt     time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns an hour-long booking tomorrow at 10:00 unless overridden.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:            fmt.Sprintf("BK%03d", idx),
		RoomID:        "room-001",
		Date:          ReferenceDate().AddDays(1),
		Start:         scheduler.NewClockTime(10, 0),
		End:           scheduler.NewClockTime(11, 0),
		Title:         fmt.Sprintf("Meeting %03d", idx),
		RequesterID:   "alice@example.com",
		RequesterName: "Alice",
		Status:        scheduler.StatusActive,
		CreatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom sets the booked room.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingWindow sets the date and HH:mm window.
func WithBookingWindow(date, start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = MustDate(date)
		f.Start = MustClock(start)
		f.End = MustClock(end)
	}
}

// WithBookingRequester sets the owner of the booking.
func WithBookingRequester(id, name string) BookingOption {
	return func(f *BookingFixture) {
		f.RequesterID = id
		f.RequesterName = name
	}
}

// WithBookingStatus sets the lifecycle state.
func WithBookingStatus(status scheduler.BookingStatus) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:              f.ID,
		RoomID:          f.RoomID,
		Date:            f.Date,
		Start:           f.Start,
		End:             f.End,
		DurationMinutes: int(f.End - f.Start),
		Title:           f.Title,
		RequesterName:   f.RequesterName,
		RequesterID:     f.RequesterID,
		Status:          f.Status,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.CreatedAt,
	}
}

// Slot returns the occupancy window of the fixture.
func (f BookingFixture) Slot() scheduler.Slot {
	return f.Persistence().Slot()
}
