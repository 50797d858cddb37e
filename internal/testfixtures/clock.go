package testfixtures

import (
	"sync"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

// Clock is a manually driven time source. It keeps the zone of its start
// instant, so Today and TimeOfDay agree with a policy evaluated in that zone.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts the clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc returns Now for injection; a nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// MoveTo jumps to the wall-clock time at on date, in the clock's zone.
func (c *Clock) MoveTo(date scheduler.Date, at scheduler.ClockTime) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = date.At(at, c.now.Location())
	return c.now
}

func (c *Clock) Today() scheduler.Date {
	return scheduler.DateOf(c.Now())
}

// TimeOfDay returns the current wall-clock time truncated to the minute.
func (c *Clock) TimeOfDay() scheduler.ClockTime {
	now := c.Now()
	return scheduler.NewClockTime(now.Hour(), now.Minute())
}
