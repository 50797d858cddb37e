package policy

import (
	"testing"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

var kst = time.FixedZone("KST", 9*60*60)

func newTestEvaluator() *Evaluator {
	p := Default()
	p.Location = kst
	// 2026-01-06 10:00 KST.
	now := time.Date(2026, time.January, 6, 1, 0, 0, 0, time.UTC)
	return NewEvaluator(p, func() time.Time { return now })
}

func clock(t *testing.T, value string) scheduler.ClockTime {
	t.Helper()
	if value == "24:00" {
		return scheduler.EndOfDay
	}
	c, err := scheduler.ParseClockTime(value)
	if err != nil {
		t.Fatalf("ParseClockTime(%q): %v", value, err)
	}
	return c
}

func TestEvaluator_CheckWindow(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator()
	today := e.Today()
	if today.String() != "2026-01-06" {
		t.Fatalf("unexpected today %s", today)
	}

	cases := []struct {
		name  string
		date  scheduler.Date
		start string
		end   string
		rule  Rule
	}{
		{name: "accepts later today", date: today, start: "10:30", end: "11:30"},
		{name: "accepts boundary hour minutes", date: today.AddDays(1), start: "20:00", end: "21:45"},
		{name: "accepts full horizon", date: today.AddDays(30), start: "09:00", end: "10:00"},
		{name: "rejects start in the past", date: today, start: "09:30", end: "10:30", rule: RulePastTime},
		{name: "rejects yesterday", date: today.AddDays(-1), start: "12:00", end: "13:00", rule: RulePastTime},
		{name: "rejects beyond horizon", date: today.AddDays(31), start: "09:00", end: "10:00", rule: RuleDaysAhead},
		{name: "rejects early start", date: today.AddDays(1), start: "07:59", end: "09:00", rule: RuleBusinessHours},
		{name: "rejects late end", date: today.AddDays(1), start: "21:00", end: "22:00", rule: RuleBusinessHours},
		{name: "rejects too short", date: today.AddDays(1), start: "09:00", end: "09:10", rule: RuleDuration},
		{name: "rejects too long", date: today.AddDays(1), start: "09:00", end: "13:01", rule: RuleDuration},
		{name: "accepts max duration", date: today.AddDays(1), start: "09:00", end: "13:00"},
		{name: "rejects midnight crossing", date: today.AddDays(1), start: "23:00", end: "23:00", rule: RuleEndOfDay},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := e.CheckWindow(tc.date, clock(t, tc.start), clock(t, tc.end))
			if tc.rule == "" {
				if v != nil {
					t.Fatalf("expected no violation, got %s: %s", v.Rule, v.Message)
				}
				return
			}
			if v == nil {
				t.Fatalf("expected %s violation", tc.rule)
			}
			if v.Rule != tc.rule {
				t.Fatalf("expected rule %s, got %s (%s)", tc.rule, v.Rule, v.Message)
			}
			if v.Message == "" {
				t.Fatalf("expected user facing message")
			}
		})
	}
}

func TestEvaluator_CheckExtension(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator()

	if v := e.CheckExtension(clock(t, "09:00"), clock(t, "12:00"), 60); v != nil {
		t.Fatalf("expected extension to max duration to pass, got %s", v.Message)
	}
	if v := e.CheckExtension(clock(t, "09:00"), clock(t, "12:00"), 61); v == nil || v.Rule != RuleDuration {
		t.Fatalf("expected duration violation, got %+v", v)
	}
	if v := e.CheckExtension(clock(t, "20:00"), clock(t, "21:00"), 60); v == nil || v.Rule != RuleBusinessHours {
		t.Fatalf("expected business hours violation, got %+v", v)
	}

	p := Default()
	p.BookingHoursEnd = 24
	p.MaxDurationMinutes = 600
	late := NewEvaluator(p, nil)
	if v := late.CheckExtension(clock(t, "23:00"), clock(t, "23:30"), 60); v == nil || v.Rule != RuleEndOfDay {
		t.Fatalf("expected end of day violation, got %+v", v)
	}
}

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("default policy should be valid: %v", err)
	}

	p := Default()
	p.MinDurationMinutes = 60
	p.MaxDurationMinutes = 30
	p.BookingHoursStart = 22
	if err := p.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
