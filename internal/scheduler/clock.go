package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
)

// ClockTime is a wall-clock time expressed in minutes since midnight.
// EndOfDay (24:00) is valid only as an exclusive end bound.
type ClockTime int

const (
	// MinutesPerDay is the length of a calendar day in minutes.
	MinutesPerDay = 24 * 60
	// EndOfDay is 24:00, the latest permitted end of a booking.
	EndOfDay ClockTime = MinutesPerDay
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseClockTime accepts a zero-padded 24-hour HH:mm value.
func ParseClockTime(value string) (ClockTime, error) {
	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("scheduler: invalid time %q", value)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return ClockTime(h*60 + min), nil
}

// NewClockTime builds a ClockTime from hours and minutes.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 60 }

// Add returns c shifted by the given number of minutes. The result is not clamped.
func (c ClockTime) Add(minutes int) ClockTime { return c + ClockTime(minutes) }

// String renders c as HH:mm; EndOfDay renders as 24:00.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}
