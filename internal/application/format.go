package application

import (
	"fmt"
	"strings"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/persistence"
)

func toRoomView(room persistence.Room) RoomView {
	return RoomView{
		ID:         room.ID,
		Code:       room.Code,
		Name:       room.Name,
		Capacity:   room.Capacity,
		Location:   room.Location,
		AutoAccept: room.AutoAccept,
	}
}

func toBookingView(booking persistence.Booking, room persistence.Room) BookingView {
	return BookingView{
		ID:              booking.ID,
		RoomCode:        room.Code,
		RoomName:        room.Name,
		Date:            booking.Date.String(),
		Start:           booking.Start.String(),
		End:             booking.End.String(),
		DurationMinutes: booking.DurationMinutes,
		Title:           booking.Title,
		RequesterName:   booking.RequesterName,
		Status:          string(booking.Status),
	}
}

func roomLine(room RoomView) string {
	line := fmt.Sprintf("%s (%s, %d명", room.Code, room.Name, room.Capacity)
	if room.Location != "" {
		line += ", " + room.Location
	}
	return line + ")"
}

func bookingLine(b BookingView) string {
	return fmt.Sprintf("[%s] %s %s~%s %s - %s (%s)", b.ID, b.Date, b.Start, b.End, b.RoomCode, b.Title, b.RequesterName)
}

func bookingDetail(b BookingView) string {
	return fmt.Sprintf("예약번호: %s\n회의실: %s (%s)\n일시: %s %s~%s (%d분)\n제목: %s",
		b.ID, b.RoomCode, b.RoomName, b.Date, b.Start, b.End, b.DurationMinutes, b.Title)
}

func statusMessage(view StatusView) string {
	var b strings.Builder
	if view.From != "" {
		fmt.Fprintf(&b, "%s %s~%s 회의실 현황", view.Date, view.From, view.To)
	} else {
		fmt.Fprintf(&b, "%s 회의실 현황", view.Date)
	}
	if len(view.Rooms) == 0 {
		b.WriteString("\n등록된 회의실이 없습니다.")
		return b.String()
	}
	for _, row := range view.Rooms {
		mark := "예약 가능"
		if !row.Available {
			mark = "예약 있음"
		}
		fmt.Fprintf(&b, "\n- %s: %s", roomLine(row.Room), mark)
		for _, booking := range row.Bookings {
			fmt.Fprintf(&b, "\n    %s~%s %s (%s)", booking.Start, booking.End, booking.Title, booking.RequesterName)
		}
	}
	return b.String()
}

func bookingListMessage(header, empty string, bookings []BookingView) string {
	if len(bookings) == 0 {
		return empty
	}
	var b strings.Builder
	b.WriteString(header)
	for _, booking := range bookings {
		b.WriteString("\n- ")
		b.WriteString(bookingLine(booking))
	}
	return b.String()
}

func helpMessage() string {
	var b strings.Builder
	b.WriteString("회의실 예약 명령어")
	for _, kind := range command.UsageOrder {
		b.WriteString("\n- ")
		b.WriteString(command.Usage[kind])
	}
	b.WriteString("\n예) book A 2026-01-07 14:00 60 \"주간 회의\"")
	return b.String()
}
