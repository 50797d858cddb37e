// Package policy checks proposed booking windows against business rules.
package policy

import (
	"errors"
	"fmt"
	"time"
)

// Policy is the set of business rules bounding when and for how long a room may be booked.
type Policy struct {
	MaxDurationMinutes int
	MinDurationMinutes int
	// BufferMinutes is the gap enforced between adjacent bookings of one room.
	BufferMinutes     int
	BookingHoursStart int
	BookingHoursEnd   int
	AllowedDaysAhead  int
	Location          *time.Location
}

// Default returns the rules used when nothing is configured.
func Default() Policy {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return Policy{
		MaxDurationMinutes: 240,
		MinDurationMinutes: 15,
		BufferMinutes:      0,
		BookingHoursStart:  8,
		BookingHoursEnd:    21,
		AllowedDaysAhead:   30,
		Location:           loc,
	}
}

// Validate reports inconsistent settings.
func (p Policy) Validate() error {
	var errs []error
	if p.MinDurationMinutes <= 0 {
		errs = append(errs, fmt.Errorf("policy: min duration must be positive"))
	}
	if p.MaxDurationMinutes < p.MinDurationMinutes {
		errs = append(errs, fmt.Errorf("policy: max duration %d is below min duration %d", p.MaxDurationMinutes, p.MinDurationMinutes))
	}
	if p.BufferMinutes < 0 {
		errs = append(errs, fmt.Errorf("policy: buffer must not be negative"))
	}
	if p.BookingHoursStart < 0 || p.BookingHoursEnd > 24 || p.BookingHoursStart >= p.BookingHoursEnd {
		errs = append(errs, fmt.Errorf("policy: invalid booking hours %d-%d", p.BookingHoursStart, p.BookingHoursEnd))
	}
	if p.AllowedDaysAhead < 0 {
		errs = append(errs, fmt.Errorf("policy: allowed days ahead must not be negative"))
	}
	if p.Location == nil {
		errs = append(errs, fmt.Errorf("policy: location is required"))
	}
	return errors.Join(errs...)
}
