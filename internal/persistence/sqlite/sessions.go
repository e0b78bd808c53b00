package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// CreateSession inserts a new session.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, created_at, updated_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		formatNullableTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at, updated_at, revoked_at
		FROM sessions WHERE token = ?`, token)
	return scanSession(row)
}

// RevokeSession marks a session revoked at the given instant.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	stamp := formatTime(revokedAt)
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token = ?",
		stamp, stamp, token,
	)
	if err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return s.GetSession(ctx, token)
}

// DeleteExpiredSessions drops sessions that expired before the reference time.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?",
		formatTime(reference),
	)
	return mapSQLiteError(err)
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	if err := row.Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &updatedAt, &revokedAt); err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}

	var err error
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if revokedAt.Valid {
		parsed, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
		session.RevokedAt = &parsed
	}
	return session, nil
}

func formatNullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}
