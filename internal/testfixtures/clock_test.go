package testfixtures

import (
	"testing"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if got := clock.TimeOfDay(); got != scheduler.NewClockTime(9, 0) {
		t.Fatalf("expected 09:00, got %v", got)
	}
}

func TestClockAdvance(t *testing.T) {
	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(ReferenceTime().Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}
	if got := nowFn(); !got.Equal(updated) {
		t.Fatalf("NowFunc should follow the clock, got %v", got)
	}
	if got := clock.TimeOfDay(); got != scheduler.NewClockTime(10, 30) {
		t.Fatalf("expected 10:30, got %v", got)
	}
}

func TestClockMoveTo(t *testing.T) {
	clock := NewClock(time.Time{})
	next := ReferenceDate().AddDays(2)

	moved := clock.MoveTo(next, MustClock("18:45"))
	if moved.Location() != Location() {
		t.Fatalf("expected the fixture zone to be kept, got %v", moved.Location())
	}
	if clock.Today() != next || clock.TimeOfDay() != MustClock("18:45") {
		t.Fatalf("unexpected position %v %v", clock.Today(), clock.TimeOfDay())
	}
}

func TestClockTodayCrossesMidnightInZone(t *testing.T) {
	clock := NewClock(time.Time{})

	clock.Advance(15 * time.Hour)
	if got := clock.Today(); got != ReferenceDate().AddDays(1) {
		t.Fatalf("expected the next day after advancing past midnight, got %v", got)
	}
}
