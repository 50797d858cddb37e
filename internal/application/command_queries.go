package application

import (
	"context"
	"fmt"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/scheduler"
)

func (s *CommandService) status(ctx context.Context, c command.Status) (Result, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list rooms: %w", err)
	}
	bookings, err := s.bookings.ListBookingsByDate(ctx, c.Date)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings on %s: %w", c.Date, err)
	}

	byRoom := make(map[string][]persistence.Booking, len(rooms))
	for _, booking := range bookings {
		byRoom[booking.RoomID] = append(byRoom[booking.RoomID], booking)
	}

	view := StatusView{Date: c.Date.String(), Rooms: make([]RoomStatus, 0, len(rooms))}
	if c.Range != nil {
		view.From = c.Range.Start.String()
		view.To = c.Range.End.String()
	}

	for _, room := range rooms {
		row := RoomStatus{Room: toRoomView(room), Bookings: []BookingView{}}
		for _, booking := range byRoom[room.ID] {
			if c.Range != nil {
				window := scheduler.Slot{RoomID: room.ID, Date: c.Date, Start: c.Range.Start, End: c.Range.End}
				if !window.Overlaps(booking.Slot()) {
					continue
				}
			}
			row.Bookings = append(row.Bookings, toBookingView(booking, room))
		}
		row.Available = len(row.Bookings) == 0
		view.Rooms = append(view.Rooms, row)
	}

	return info(command.KindStatus, statusMessage(view), view), nil
}

func (s *CommandService) listRooms(ctx context.Context) (Result, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list rooms: %w", err)
	}

	views := make([]RoomView, 0, len(rooms))
	message := "등록된 회의실이 없습니다."
	if len(rooms) > 0 {
		message = fmt.Sprintf("회의실 목록 (%d개)", len(rooms))
	}
	for _, room := range rooms {
		view := toRoomView(room)
		views = append(views, view)
		message += "\n- " + roomLine(view)
	}
	return info(command.KindList, message, views), nil
}

func (s *CommandService) listBookings(ctx context.Context, c command.ListBookings) (Result, error) {
	bookings, err := s.bookings.ListBookingsByDate(ctx, c.Date)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings on %s: %w", c.Date, err)
	}
	views, err := s.bookingViews(ctx, bookings)
	if err != nil {
		return Result{}, err
	}

	message := bookingListMessage(
		fmt.Sprintf("%s 예약 목록 (%d건)", c.Date, len(views)),
		fmt.Sprintf("%s 에는 예약이 없습니다.", c.Date),
		views,
	)
	return info(command.KindList, message, views), nil
}

func (s *CommandService) myBookings(ctx context.Context, req Request, c command.My) (Result, error) {
	var from, to *scheduler.Date
	today := s.evaluator.Today()
	switch c.Filter {
	case command.MyToday:
		from, to = &today, &today
	case command.MyWeek:
		end := today.AddDays(6)
		from, to = &today, &end
	}

	bookings, err := s.bookings.ListBookingsForRequester(ctx, req.RequesterID, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings for requester: %w", err)
	}
	views, err := s.bookingViews(ctx, bookings)
	if err != nil {
		return Result{}, err
	}

	message := bookingListMessage(
		fmt.Sprintf("%s 님의 예약 (%d건)", req.RequesterName, len(views)),
		"예약 내역이 없습니다.",
		views,
	)
	return info(command.KindMy, message, views), nil
}

// bookingViews resolves the room of every booking, reading each room once.
func (s *CommandService) bookingViews(ctx context.Context, bookings []persistence.Booking) ([]BookingView, error) {
	rooms := make(map[string]persistence.Room)
	views := make([]BookingView, 0, len(bookings))
	for _, booking := range bookings {
		room, ok := rooms[booking.RoomID]
		if !ok {
			var err error
			room, err = s.rooms.GetRoom(ctx, booking.RoomID)
			if err != nil {
				return nil, fmt.Errorf("get room %s: %w", booking.RoomID, err)
			}
			rooms[booking.RoomID] = room
		}
		views = append(views, toBookingView(booking, room))
	}
	return views, nil
}
