package application

import (
	"github.com/example/roombot/internal/command"
)

// Principal represents the caller of an administrative operation.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Request is one chat message addressed to the bot.
type Request struct {
	RequesterName string
	// RequesterID is the stable identity used for ownership checks.
	RequesterID string
	Text        string
	SourceAddr  string
}

// Result is the structured reply to a Request. Data holds the view built for the
// command kind and is nil for failures.
type Result struct {
	Success bool         `json:"success"`
	Kind    command.Kind `json:"kind,omitempty"`
	Message string       `json:"message"`
	Color   string       `json:"color"`
	Data    any          `json:"data,omitempty"`
}

// Reply colors used by chat clients to tint the message.
const (
	ColorSuccess = "#2ECC71"
	ColorFailure = "#E74C3C"
	ColorInfo    = "#3498DB"
)

// RoomView is the public projection of a room.
type RoomView struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	Location   string `json:"location,omitempty"`
	AutoAccept bool   `json:"autoAccept"`
}

// BookingView is the public projection of a booking.
type BookingView struct {
	ID              string `json:"id"`
	RoomCode        string `json:"roomCode"`
	RoomName        string `json:"roomName"`
	Date            string `json:"date"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"durationMinutes"`
	Title           string `json:"title"`
	RequesterName   string `json:"requesterName"`
	Status          string `json:"status"`
}

// RoomStatus is one row of a status reply.
type RoomStatus struct {
	Room      RoomView      `json:"room"`
	Available bool          `json:"available"`
	Bookings  []BookingView `json:"bookings"`
}

// StatusView answers a status command.
type StatusView struct {
	Date  string       `json:"date"`
	From  string       `json:"from,omitempty"`
	To    string       `json:"to,omitempty"`
	Rooms []RoomStatus `json:"rooms"`
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Capacity      int    `json:"capacity"`
	Location      string `json:"location"`
	AutoAccept    bool   `json:"autoAccept"`
	CalendarID    string `json:"calendarId"`
	ResourceEmail string `json:"resourceEmail"`
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update an existing room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}
