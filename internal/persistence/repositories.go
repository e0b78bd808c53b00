package persistence

import (
	"context"
	"time"
)

// RoomRepository exposes storage operations for rooms.
type RoomRepository interface {
	InsertRoom(ctx context.Context, room Room) error
	LoadRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	// DeleteRoom removes the room and every reservation it owns.
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationRepository exposes storage operations for reservation records.
// Insert and delete must be atomic per record; per-room serialization is
// handled above this layer.
type ReservationRepository interface {
	InsertReservation(ctx context.Context, res Reservation) error
	DeleteReservation(ctx context.Context, id string) error
	LoadReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error)
}

// UserRepository exposes storage operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// Store bundles every repository a fully wired service needs.
type Store interface {
	RoomRepository
	ReservationRepository
	UserRepository
	SessionRepository
	Close() error
}
