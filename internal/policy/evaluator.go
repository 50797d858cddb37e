package policy

import (
	"fmt"
	"time"

	"github.com/example/roombot/internal/scheduler"
)

// Evaluator applies a Policy relative to the current instant.
type Evaluator struct {
	policy Policy
	now    func() time.Time
}

// NewEvaluator constructs an Evaluator; now defaults to time.Now.
func NewEvaluator(p Policy, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	return &Evaluator{policy: p, now: now}
}

// Policy returns the rules the evaluator enforces.
func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Now returns the current instant in the policy location.
func (e *Evaluator) Now() time.Time {
	return e.now().In(e.policy.Location)
}

// Today returns the current calendar day in the policy location.
func (e *Evaluator) Today() scheduler.Date {
	return scheduler.DateOf(e.Now())
}

// CheckWindow validates a proposed [start, end) window on date.
func (e *Evaluator) CheckWindow(date scheduler.Date, start, end scheduler.ClockTime) *Violation {
	if end <= start || end > scheduler.EndOfDay {
		return &Violation{Rule: RuleEndOfDay, Message: "예약은 자정을 넘길 수 없습니다."}
	}
	if date.At(start, e.policy.Location).Before(e.Now()) {
		return &Violation{Rule: RulePastTime, Message: "지난 시간은 예약할 수 없습니다."}
	}
	if v := e.checkHorizon(date); v != nil {
		return v
	}
	if v := e.checkHours(start, end); v != nil {
		return v
	}
	return e.CheckDuration(int(end - start))
}

// CheckDuration validates the length of a booking against the inclusive bounds.
func (e *Evaluator) CheckDuration(minutes int) *Violation {
	if minutes < e.policy.MinDurationMinutes || minutes > e.policy.MaxDurationMinutes {
		return &Violation{
			Rule:    RuleDuration,
			Message: fmt.Sprintf("예약 시간은 %d분 이상 %d분 이하로 지정해 주세요.", e.policy.MinDurationMinutes, e.policy.MaxDurationMinutes),
		}
	}
	return nil
}

// CheckExtension validates lengthening a booking that currently spans [start, end).
func (e *Evaluator) CheckExtension(start, end scheduler.ClockTime, additional int) *Violation {
	total := int(end-start) + additional
	if total > e.policy.MaxDurationMinutes {
		return &Violation{
			Rule:    RuleDuration,
			Message: fmt.Sprintf("연장 후 총 예약 시간이 최대 %d분을 초과합니다. (현재 %d분, 연장 %d분)", e.policy.MaxDurationMinutes, int(end-start), additional),
		}
	}
	newEnd := end.Add(additional)
	if newEnd > scheduler.EndOfDay {
		return &Violation{Rule: RuleEndOfDay, Message: "예약은 자정을 넘길 수 없습니다."}
	}
	if newEnd.Hour() > e.policy.BookingHoursEnd {
		return e.hoursViolation()
	}
	return nil
}

// checkHours compares hours only: minutes within the boundary hour are accepted,
// so 21:30 passes a 21 o'clock limit.
func (e *Evaluator) checkHours(start, end scheduler.ClockTime) *Violation {
	if start.Hour() < e.policy.BookingHoursStart || end.Hour() > e.policy.BookingHoursEnd {
		return e.hoursViolation()
	}
	return nil
}

func (e *Evaluator) hoursViolation() *Violation {
	return &Violation{
		Rule:    RuleBusinessHours,
		Message: fmt.Sprintf("예약 가능 시간은 %02d:00부터 %02d:00까지입니다.", e.policy.BookingHoursStart, e.policy.BookingHoursEnd),
	}
}

func (e *Evaluator) checkHorizon(date scheduler.Date) *Violation {
	if e.Today().DaysUntil(date) > e.policy.AllowedDaysAhead {
		return &Violation{
			Rule:    RuleDaysAhead,
			Message: fmt.Sprintf("예약은 오늘부터 %d일 이내만 가능합니다.", e.policy.AllowedDaysAhead),
		}
	}
	return nil
}
