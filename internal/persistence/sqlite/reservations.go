package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// InsertReservation inserts a committed reservation record.
func (s *Storage) InsertReservation(ctx context.Context, res persistence.Reservation) error {
	if res.ID == "" || res.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, room_id, requester_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.RoomID,
		res.RequesterID,
		formatTime(res.Start),
		formatTime(res.End),
		formatTime(res.CreatedAt),
	)
	return mapSQLiteError(err)
}

// DeleteReservation removes a reservation record by id.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
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

// LoadReservationsForRoom returns the room's reservations ordered by start
// then id.
func (s *Storage) LoadReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, requester_id, start_time, end_time, created_at
		FROM reservations WHERE room_id = ?
		ORDER BY start_time ASC, id ASC`, roomID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		var res persistence.Reservation
		var start, end, createdAt string
		if err := rows.Scan(&res.ID, &res.RoomID, &res.RequesterID, &start, &end, &createdAt); err != nil {
			return nil, mapSQLiteError(err)
		}
		if res.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if res.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		if res.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return reservations, nil
}
