// Package command turns chat text into typed booking intents.
package command

import "github.com/example/roombot/internal/scheduler"

// Kind names the intent family of a parsed command.
type Kind string

const (
	KindStatus Kind = "status"
	KindBook   Kind = "book"
	KindCancel Kind = "cancel"
	KindMove   Kind = "move"
	KindExtend Kind = "extend"
	KindMy     Kind = "my"
	KindList   Kind = "list"
	KindHelp   Kind = "help"
)

// Command is one of the intent structs defined in this package.
type Command interface {
	Kind() Kind
}

// TimeRange is an optional HH:mm-HH:mm window used to narrow status queries.
type TimeRange struct {
	Start scheduler.ClockTime
	End   scheduler.ClockTime
}

// Status asks for room availability on a day, optionally limited to a window.
type Status struct {
	Date  scheduler.Date
	Range *TimeRange
}

// Book reserves a room.
type Book struct {
	RoomCode        string
	Date            scheduler.Date
	Start           scheduler.ClockTime
	DurationMinutes int
	Title           string
}

// End returns the exclusive end of the requested window.
func (b Book) End() scheduler.ClockTime {
	return b.Start.Add(b.DurationMinutes)
}

// Cancel cancels one of the requester's bookings.
type Cancel struct {
	BookingID string
}

// Move relocates a booking to a new date and start time, keeping its duration.
type Move struct {
	BookingID string
	Date      scheduler.Date
	Start     scheduler.ClockTime
}

// Extend lengthens a booking by AdditionalMinutes.
type Extend struct {
	BookingID         string
	AdditionalMinutes int
}

// MyFilter restricts the "my bookings" listing.
type MyFilter string

const (
	MyToday MyFilter = "today"
	MyWeek  MyFilter = "week"
	MyAll   MyFilter = "all"
)

// My lists the requester's active bookings.
type My struct {
	Filter MyFilter
}

// ListRooms lists every bookable room.
type ListRooms struct{}

// ListBookings lists all active bookings on a date.
type ListBookings struct {
	Date scheduler.Date
}

// Help shows usage.
type Help struct{}

func (Status) Kind() Kind       { return KindStatus }
func (Book) Kind() Kind         { return KindBook }
func (Cancel) Kind() Kind       { return KindCancel }
func (Move) Kind() Kind         { return KindMove }
func (Extend) Kind() Kind       { return KindExtend }
func (My) Kind() Kind           { return KindMy }
func (ListRooms) Kind() Kind    { return KindList }
func (ListBookings) Kind() Kind { return KindList }
func (Help) Kind() Kind         { return KindHelp }
