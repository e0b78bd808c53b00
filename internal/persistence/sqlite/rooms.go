package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// InsertRoom inserts a new room.
func (s *Storage) InsertRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, capacity, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.Name,
		room.Capacity,
		room.Location,
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	return mapSQLiteError(err)
}

// LoadRoom retrieves a room by id.
func (s *Storage) LoadRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, capacity, location, created_at, updated_at
		FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, mapSQLiteError(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then id.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, capacity, location, created_at, updated_at
		FROM rooms ORDER BY name COLLATE NOCASE ASC, id ASC`)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapSQLiteError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return rooms, nil
}

// DeleteRoom removes a room; its reservations go with it via the foreign key
// cascade.
func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var location sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&room.ID, &room.Name, &room.Capacity, &location, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, err
	}
	if location.Valid {
		room.Location = location.String
	}

	var err error
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return room, nil
}
