package scheduler

// Slot is the half-open occupancy window [Start, End) of a room on a single day.
type Slot struct {
	BookingID string
	RoomID    string
	Date      Date
	Start     ClockTime
	End       ClockTime
}

// DurationMinutes returns End - Start.
func (s Slot) DurationMinutes() int {
	return int(s.End - s.Start)
}

// Overlaps reports whether both slots occupy the same room on the same day for at
// least one minute. Touching boundaries (one ends exactly when the other starts) do
// not overlap.
func (s Slot) Overlaps(other Slot) bool {
	if s.RoomID != other.RoomID || s.Date != other.Date {
		return false
	}
	return other.Start < s.End && other.End > s.Start
}

// Pad widens the slot by before minutes at the start and after minutes at the end,
// clamped to the day.
func (s Slot) Pad(before, after int) Slot {
	padded := s
	padded.Start = s.Start.Add(-before)
	if padded.Start < 0 {
		padded.Start = 0
	}
	padded.End = s.End.Add(after)
	if padded.End > EndOfDay {
		padded.End = EndOfDay
	}
	return padded
}

// Conflict identifies an existing slot that collides with a candidate.
type Conflict struct {
	WithBookingID string
	RoomID        string
	Date          Date
	Start         ClockTime
	End           ClockTime
}

// DetectConflicts returns every existing slot overlapping the candidate, skipping
// the candidate's own booking so a booking never conflicts with itself.
func DetectConflicts(existing []Slot, candidate Slot) []Conflict {
	var conflicts []Conflict
	for _, slot := range existing {
		if candidate.BookingID != "" && slot.BookingID == candidate.BookingID {
			continue
		}
		if !slot.Overlaps(candidate) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: slot.BookingID,
			RoomID:        slot.RoomID,
			Date:          slot.Date,
			Start:         slot.Start,
			End:           slot.End,
		})
	}
	return conflicts
}
