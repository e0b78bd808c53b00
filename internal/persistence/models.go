package persistence

import "time"

// Room is a meeting room catalog entry as stored.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation is a committed booking record for a room.
type Reservation struct {
	ID          string
	RoomID      string
	RequesterID string
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
}

// User is an account able to request bookings.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an issued authentication session.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
