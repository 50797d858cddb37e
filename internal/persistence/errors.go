package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique key (room code, resource email, booking id) is already taken.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConflict is returned when the guarded window overlaps another active booking.
	ErrConflict = errors.New("persistence: booking conflict")
	// ErrInvalidTransition is returned when a booking status change is not permitted.
	ErrInvalidTransition = errors.New("persistence: invalid status transition")
	// ErrConstraintViolation is returned when a row violates a schema constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a booking references an unknown room.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
