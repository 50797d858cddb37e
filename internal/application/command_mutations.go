package application

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/scheduler"
)

func (s *CommandService) book(ctx context.Context, req Request, c command.Book) (Result, error) {
	end := c.End()
	if v := s.evaluator.CheckWindow(c.Date, c.Start, end); v != nil {
		return Result{}, v
	}

	room, err := s.rooms.GetRoomByCode(ctx, c.RoomCode)
	if errors.Is(err, persistence.ErrNotFound) {
		return Result{}, reject(ErrNotFound, "회의실을 찾을 수 없습니다: %s", c.RoomCode)
	}
	if err != nil {
		return Result{}, fmt.Errorf("get room %s: %w", c.RoomCode, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	slot := scheduler.Slot{RoomID: room.ID, Date: c.Date, Start: c.Start, End: end}
	guard := s.guard(slot)
	if err := s.ensureFree(ctx, room, guard); err != nil {
		return Result{}, err
	}

	now := s.now()
	booking := persistence.Booking{
		RoomID:          room.ID,
		Date:            c.Date,
		Start:           c.Start,
		End:             end,
		DurationMinutes: c.DurationMinutes,
		Title:           c.Title,
		RequesterName:   req.RequesterName,
		RequesterID:     req.RequesterID,
		Status:          scheduler.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for attempt := 1; ; attempt++ {
		booking.ID = s.idGenerator()
		err = s.bookings.CreateBooking(ctx, booking, guard)
		if !errors.Is(err, persistence.ErrDuplicate) || attempt == maxIDAttempts {
			break
		}
		s.loggerWith(ctx, "book").WarnContext(ctx, "booking id already taken, retrying", "booking_id", booking.ID, "attempt", attempt)
	}
	if errors.Is(err, persistence.ErrConflict) {
		return Result{}, &ConflictError{RoomCode: room.Code}
	}
	if err != nil {
		return Result{}, fmt.Errorf("create booking: %w", err)
	}

	s.notifyCalendar(ctx, "create", booking.ID, func() { s.calendar.BookingCreated(ctx, room, booking) })

	view := toBookingView(booking, room)
	return success(command.KindBook, "예약이 완료되었습니다.\n"+bookingDetail(view), view), nil
}

func (s *CommandService) cancel(ctx context.Context, req Request, c command.Cancel) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.ownedBooking(ctx, req, c.BookingID, "취소")
	if err != nil {
		return Result{}, err
	}
	if booking.Status != scheduler.StatusActive {
		return Result{}, reject(ErrInvalidState, "이미 취소되었거나 종료된 예약입니다: %s", booking.ID)
	}
	room, err := s.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return Result{}, fmt.Errorf("get room %s: %w", booking.RoomID, err)
	}

	cancelled, err := s.bookings.CancelBooking(ctx, booking.ID, s.now())
	if err != nil {
		return Result{}, s.mutationError(room, booking.ID, fmt.Errorf("cancel booking: %w", err))
	}

	s.notifyCalendar(ctx, "cancel", cancelled.ID, func() { s.calendar.BookingCancelled(ctx, room, cancelled) })

	view := toBookingView(cancelled, room)
	return success(command.KindCancel, "예약이 취소되었습니다.\n"+bookingDetail(view), view), nil
}

func (s *CommandService) move(ctx context.Context, req Request, c command.Move) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.ownedActiveBooking(ctx, req, c.BookingID, "변경")
	if err != nil {
		return Result{}, err
	}

	end := c.Start.Add(booking.DurationMinutes)
	if v := s.evaluator.CheckWindow(c.Date, c.Start, end); v != nil {
		return Result{}, v
	}

	room, err := s.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return Result{}, fmt.Errorf("get room %s: %w", booking.RoomID, err)
	}

	slot := scheduler.Slot{BookingID: booking.ID, RoomID: room.ID, Date: c.Date, Start: c.Start, End: end}
	guard := s.guard(slot)
	if err := s.ensureFree(ctx, room, guard); err != nil {
		return Result{}, err
	}

	moved, err := s.bookings.MoveBooking(ctx, persistence.MoveParams{
		BookingID: booking.ID,
		Date:      c.Date,
		Start:     c.Start,
		End:       end,
		Guard:     guard,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return Result{}, s.mutationError(room, booking.ID, fmt.Errorf("move booking: %w", err))
	}

	s.notifyCalendar(ctx, "update", moved.ID, func() { s.calendar.BookingUpdated(ctx, room, moved) })

	view := toBookingView(moved, room)
	return success(command.KindMove, "예약이 변경되었습니다.\n"+bookingDetail(view), view), nil
}

func (s *CommandService) extend(ctx context.Context, req Request, c command.Extend) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.ownedActiveBooking(ctx, req, c.BookingID, "연장")
	if err != nil {
		return Result{}, err
	}
	if v := s.evaluator.CheckExtension(booking.Start, booking.End, c.AdditionalMinutes); v != nil {
		return Result{}, v
	}

	room, err := s.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return Result{}, fmt.Errorf("get room %s: %w", booking.RoomID, err)
	}

	newEnd := booking.End.Add(c.AdditionalMinutes)
	delta := scheduler.Slot{BookingID: booking.ID, RoomID: room.ID, Date: booking.Date, Start: booking.End, End: newEnd}
	guard := delta.Pad(0, s.evaluator.Policy().BufferMinutes)
	if err := s.ensureFree(ctx, room, guard); err != nil {
		return Result{}, err
	}

	extended, err := s.bookings.ExtendBooking(ctx, persistence.ExtendParams{
		BookingID: booking.ID,
		End:       newEnd,
		Guard:     guard,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return Result{}, s.mutationError(room, booking.ID, fmt.Errorf("extend booking: %w", err))
	}

	s.notifyCalendar(ctx, "update", extended.ID, func() { s.calendar.BookingUpdated(ctx, room, extended) })

	view := toBookingView(extended, room)
	return success(command.KindExtend, fmt.Sprintf("예약이 %d분 연장되었습니다.\n", c.AdditionalMinutes)+bookingDetail(view), view), nil
}

func (s *CommandService) guard(slot scheduler.Slot) scheduler.Slot {
	buffer := s.evaluator.Policy().BufferMinutes
	return slot.Pad(buffer, buffer)
}

// ensureFree returns a *ConflictError naming the colliding bookings when guard is
// not available. guard.BookingID, when set, is excluded from the check.
func (s *CommandService) ensureFree(ctx context.Context, room persistence.Room, guard scheduler.Slot) error {
	ok, err := s.bookings.CheckAvailability(ctx, guard, guard.BookingID)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if ok {
		return nil
	}

	sameDay, err := s.bookings.ListBookingsByDate(ctx, guard.Date)
	if err != nil {
		return fmt.Errorf("list bookings on %s: %w", guard.Date, err)
	}
	existing := make([]scheduler.Slot, 0, len(sameDay))
	for _, booking := range sameDay {
		existing = append(existing, booking.Slot())
	}
	return &ConflictError{RoomCode: room.Code, Conflicts: scheduler.DetectConflicts(existing, guard)}
}

// ownedBooking loads a booking and checks it belongs to the requester. Unknown ids
// and foreign bookings are reported distinctly.
func (s *CommandService) ownedBooking(ctx context.Context, req Request, id, action string) (persistence.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if errors.Is(err, persistence.ErrNotFound) {
		return persistence.Booking{}, reject(ErrNotFound, "예약을 찾을 수 없습니다: %s", id)
	}
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	if booking.RequesterID != req.RequesterID {
		return persistence.Booking{}, reject(ErrUnauthorized, "본인이 예약한 건만 %s할 수 있습니다: %s", action, id)
	}
	return booking, nil
}

func (s *CommandService) ownedActiveBooking(ctx context.Context, req Request, id, action string) (persistence.Booking, error) {
	booking, err := s.ownedBooking(ctx, req, id, action)
	if err != nil {
		return persistence.Booking{}, err
	}
	if booking.Status != scheduler.StatusActive {
		return persistence.Booking{}, reject(ErrInvalidState, "활성 상태의 예약만 %s할 수 있습니다: %s (%s)", action, id, booking.Status)
	}
	return booking, nil
}

// notifyCalendar runs one calendar notification for a committed change. A panic
// in the collaborator is logged and contained so the local outcome stands.
func (s *CommandService) notifyCalendar(ctx context.Context, op, bookingID string, notify func()) {
	defer func() {
		if r := recover(); r != nil {
			s.loggerWith(ctx, "notifyCalendar", "op", op, "booking_id", bookingID).
				ErrorContext(ctx, "calendar sync panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	notify()
}

// mutationError turns store rejections that slipped past the pre-checks into
// business errors.
func (s *CommandService) mutationError(room persistence.Room, bookingID string, err error) error {
	switch mapBookingRepoError(err) {
	case ErrConflict:
		return &ConflictError{RoomCode: room.Code}
	case ErrInvalidState:
		return reject(ErrInvalidState, "이미 취소되었거나 종료된 예약입니다: %s", bookingID)
	case ErrNotFound:
		return reject(ErrNotFound, "예약을 찾을 수 없습니다: %s", bookingID)
	}
	return err
}
