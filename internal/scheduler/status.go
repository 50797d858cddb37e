package scheduler

import "fmt"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// ParseBookingStatus converts a stored value into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	status := BookingStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("scheduler: unknown booking status %q", value)
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Only active bookings change state; cancelled and completed are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == StatusActive && (next == StatusCancelled || next == StatusCompleted)
}
