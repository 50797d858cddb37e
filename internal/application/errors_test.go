package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/policy"
	"github.com/example/roombot/internal/scheduler"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	if got := (&ValidationError{}).Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{}
	withFields.add("name", "required")
	withFields.add("code", "required")
	if got := withFields.Error(); got != "validation failed: code, name" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
	if !withFields.HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		want string
	}{
		"parse error":   {err: &command.ParseError{Reason: "bad"}, want: "bad"},
		"policy":        {err: fmt.Errorf("wrapped: %w", &policy.Violation{Rule: policy.RuleDuration, Message: "too long"}), want: "too long"},
		"request error": {err: reject(ErrNotFound, "no booking %s", "AB12"), want: "no booking AB12"},
		"conflict": {
			err: &ConflictError{RoomCode: "A", Conflicts: []scheduler.Conflict{{
				WithBookingID: "XY12", Date: scheduler.Date{Year: 2030, Month: 1, Day: 2},
				Start: scheduler.NewClockTime(10, 0), End: scheduler.NewClockTime(11, 0),
			}}},
			want: "A 회의실은 요청한 시간에 이미 예약이 있습니다.\n- 2030-01-02 10:00~11:00 (예약번호 XY12)",
		},
		"store failure":   {err: errors.New("disk I/O error"), want: genericFailureMessage},
		"nil has no text": {err: nil, want: ""},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tc.err); got != tc.want {
				t.Fatalf("UserMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestErrorUnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("cancel: %w", reject(ErrUnauthorized, "not yours"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized in chain")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("unauthorized must not read as not found")
	}
}

func TestConflictErrorIsConflict(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("book: %w", &ConflictError{RoomCode: "A"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict in chain")
	}
	if got := ErrorKind(err); got != "conflict" {
		t.Fatalf("ErrorKind() = %q, want conflict", got)
	}
}
