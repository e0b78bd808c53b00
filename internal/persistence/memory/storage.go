// Package memory provides an in-memory implementation of the persistence
// interfaces, used for tests and single-process deployments without a
// database file.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// Storage implements persistence.Store with mutex-protected maps.
type Storage struct {
	mu           sync.RWMutex
	rooms        map[string]persistence.Room
	reservations map[string]persistence.Reservation
	users        map[string]persistence.User
	sessions     map[string]persistence.Session
}

// Open returns a fresh in-memory store.
func Open() *Storage {
	return &Storage{
		rooms:        make(map[string]persistence.Room),
		reservations: make(map[string]persistence.Reservation),
		users:        make(map[string]persistence.User),
		sessions:     make(map[string]persistence.Session),
	}
}

// Close is a no-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate is a no-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- RoomRepository implementation ---

// InsertRoom stores a new room.
func (s *Storage) InsertRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.rooms[room.ID] = room
	return nil
}

// LoadRoom retrieves a room by id.
func (s *Storage) LoadRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then id.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})
	return rooms, nil
}

// DeleteRoom removes the room and every reservation it owns.
func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	for resID, res := range s.reservations {
		if res.RoomID == id {
			delete(s.reservations, resID)
		}
	}
	return nil
}

// --- ReservationRepository implementation ---

// InsertReservation stores a new reservation record.
func (s *Storage) InsertReservation(ctx context.Context, res persistence.Reservation) error {
	if res.ID == "" || res.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	if !res.Start.Before(res.End) {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[res.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.rooms[res.RoomID]; !ok {
		return persistence.ErrNotFound
	}
	s.reservations[res.ID] = res
	return nil
}

// DeleteReservation removes a reservation record by id.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// LoadReservationsForRoom returns the room's reservations ordered by start
// then id.
func (s *Storage) LoadReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []persistence.Reservation
	for _, res := range s.reservations {
		if res.RoomID == roomID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user, enforcing unique email addresses.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.Email == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	lower := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lower {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by id.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// --- SessionRepository implementation ---

// CreateSession stores a new session.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession marks a session revoked at the given instant.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return session, nil
}

// DeleteExpiredSessions drops sessions that expired before the reference time.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}
