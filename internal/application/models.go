package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Location string
	Capacity int
}

// Room represents a catalog entry for a physical meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomStatus is a point-in-time availability summary for a room.
type RoomStatus struct {
	RoomID           string
	Name             string
	State            booking.RoomState
	ReservationCount int
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// ListRoomsParams wraps pagination inputs for room listings.
type ListRoomsParams struct {
	Principal Principal
	Page      int
	PerPage   int
}

// RoomPage is one page of the room catalog.
type RoomPage struct {
	Rooms   []Room
	Total   int
	Page    int
	PerPage int
}

// ReservationInput captures caller provided reservation fields.
type ReservationInput struct {
	RoomID string
	Start  time.Time
	End    time.Time
}

// Reservation represents a committed booking.
type Reservation struct {
	ID          string
	RoomID      string
	RequesterID string
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
}

// CreateReservationParams wraps the data required to book a room.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// CancelReservationParams wraps the data required to cancel a booking.
type CancelReservationParams struct {
	Principal     Principal
	RoomID        string
	ReservationID string
}

// AvailabilityQuery asks whether a room is free for an interval.
type AvailabilityQuery struct {
	RoomID string
	Start  time.Time
	End    time.Time
}

// User represents a registered account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
}

// Session represents an issued authentication session.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RegisterUserInput captures caller provided registration fields.
type RegisterUserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// AuthenticateParams carries login credentials.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult bundles the authenticated user with the issued session.
type AuthenticateResult struct {
	User    User
	Session Session
}
