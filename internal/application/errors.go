package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/policy"
	"github.com/example/roombot/internal/scheduler"
)

var (
	// ErrUnauthorized is returned when the requester may not act on the resource.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested room or booking does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a room code or resource email is taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrConflict is returned when the requested window overlaps another booking.
	ErrConflict = errors.New("application: booking conflict")
	// ErrInvalidState is returned when a booking is no longer active.
	ErrInvalidState = errors.New("application: invalid booking state")
)

// RequestError is an expected business failure. Message is shown to the requester
// verbatim; Err is one of the sentinels above.
type RequestError struct {
	Err     error
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func reject(err error, format string, args ...any) *RequestError {
	return &RequestError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a requested window overlaps active bookings of the room.
// Conflicts may be empty when the store rejected the write without details.
type ConflictError struct {
	RoomCode  string
	Conflicts []scheduler.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: room %s overlaps %d booking(s)", ErrConflict, e.RoomCode, len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Message lists the colliding windows for the requester.
func (e *ConflictError) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 회의실은 요청한 시간에 이미 예약이 있습니다.", e.RoomCode)
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n- %s %s~%s (예약번호 %s)", c.Date, c.Start, c.End, c.WithBookingID)
	}
	return b.String()
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(v.fields(), ", ")
}

func (v *ValidationError) fields() []string {
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// UserMessage returns the text to show the requester for err. Unexpected errors
// collapse to a generic notice; their detail only goes to the logs.
func UserMessage(err error) string {
	var (
		pErr *command.ParseError
		vErr *policy.Violation
		rErr *RequestError
		cErr *ConflictError
		fErr *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pErr):
		return pErr.Error()
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.As(err, &rErr):
		return rErr.Message
	case errors.As(err, &cErr):
		return cErr.Message()
	case errors.As(err, &fErr):
		return "입력값이 올바르지 않습니다: " + strings.Join(fErr.fields(), ", ")
	default:
		return genericFailureMessage
	}
}

const genericFailureMessage = "요청을 처리하는 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
