package scheduler

import "testing"

func slotAt(id, room string, start, end string) Slot {
	s, _ := ParseClockTime(start)
	var e ClockTime
	if end == "24:00" {
		e = EndOfDay
	} else {
		e, _ = ParseClockTime(end)
	}
	return Slot{BookingID: id, RoomID: room, Date: Date{Year: 2026, Month: 1, Day: 7}, Start: s, End: e}
}

func TestSlotOverlaps(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		a, b Slot
		want bool
	}{
		"touching at end is free":      {a: slotAt("A", "r1", "09:00", "10:00"), b: slotAt("B", "r1", "10:00", "11:00"), want: false},
		"touching at start is free":    {a: slotAt("A", "r1", "10:00", "11:00"), b: slotAt("B", "r1", "09:00", "10:00"), want: false},
		"one minute overlap conflicts": {a: slotAt("A", "r1", "09:00", "10:01"), b: slotAt("B", "r1", "10:00", "11:00"), want: true},
		"containment conflicts":        {a: slotAt("A", "r1", "09:00", "12:00"), b: slotAt("B", "r1", "10:00", "11:00"), want: true},
		"identical conflicts":          {a: slotAt("A", "r1", "09:00", "10:00"), b: slotAt("B", "r1", "09:00", "10:00"), want: true},
		"other room is free":           {a: slotAt("A", "r1", "09:00", "10:00"), b: slotAt("B", "r2", "09:00", "10:00"), want: false},
		"end of day":                   {a: slotAt("A", "r1", "23:00", "24:00"), b: slotAt("B", "r1", "23:30", "24:00"), want: true},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("different day is free", func(t *testing.T) {
		t.Parallel()
		a := slotAt("A", "r1", "09:00", "10:00")
		b := a
		b.Date = a.Date.AddDays(1)
		if a.Overlaps(b) {
			t.Fatalf("expected slots on different days not to overlap")
		}
	})
}

func TestSlotPad(t *testing.T) {
	t.Parallel()

	padded := slotAt("A", "r1", "00:10", "23:55").Pad(15, 15)
	if padded.Start != 0 {
		t.Fatalf("expected start clamped to 00:00, got %s", padded.Start)
	}
	if padded.End != EndOfDay {
		t.Fatalf("expected end clamped to 24:00, got %s", padded.End)
	}

	padded = slotAt("A", "r1", "10:00", "11:00").Pad(10, 5)
	if padded.Start.String() != "09:50" || padded.End.String() != "11:05" {
		t.Fatalf("unexpected padded window %s-%s", padded.Start, padded.End)
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	existing := []Slot{
		slotAt("B1", "r1", "09:00", "10:00"),
		slotAt("B2", "r1", "10:30", "11:30"),
		slotAt("B3", "r2", "09:30", "10:30"),
	}

	t.Run("room overlap produces conflict", func(t *testing.T) {
		t.Parallel()
		conflicts := DetectConflicts(existing, slotAt("", "r1", "09:30", "11:00"))
		if len(conflicts) != 2 {
			t.Fatalf("expected 2 conflicts, got %d", len(conflicts))
		}
		if conflicts[0].WithBookingID != "B1" || conflicts[1].WithBookingID != "B2" {
			t.Fatalf("unexpected conflicts %+v", conflicts)
		}
	})

	t.Run("non-overlapping slots yield no conflicts", func(t *testing.T) {
		t.Parallel()
		if conflicts := DetectConflicts(existing, slotAt("", "r1", "10:00", "10:30")); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("booking never conflicts with itself", func(t *testing.T) {
		t.Parallel()
		if conflicts := DetectConflicts(existing, slotAt("B1", "r1", "09:00", "10:15")); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})
}
