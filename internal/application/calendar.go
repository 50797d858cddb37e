package application

import (
	"context"

	"github.com/example/roombot/internal/persistence"
)

// CalendarSync mirrors committed bookings to an external calendar. Implementations
// must not block the caller for long and report their own failures; a sync error
// never rolls back a booking.
type CalendarSync interface {
	BookingCreated(ctx context.Context, room persistence.Room, booking persistence.Booking)
	BookingUpdated(ctx context.Context, room persistence.Room, booking persistence.Booking)
	BookingCancelled(ctx context.Context, room persistence.Room, booking persistence.Booking)
}

// NopCalendar discards every notification.
type NopCalendar struct{}

func (NopCalendar) BookingCreated(context.Context, persistence.Room, persistence.Booking)   {}
func (NopCalendar) BookingUpdated(context.Context, persistence.Room, persistence.Booking)   {}
func (NopCalendar) BookingCancelled(context.Context, persistence.Room, persistence.Booking) {}

// CommandObserver receives one observation per handled command. outcome is
// "success" or an ErrorKind label.
type CommandObserver interface {
	ObserveCommand(kind, outcome string, elapsedSeconds float64)
}

type nopObserver struct{}

func (nopObserver) ObserveCommand(string, string, float64) {}
