package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// CreateUser inserts a new user account.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.Email == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return mapSQLiteError(err)
}

// GetUser retrieves a user by id.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email address.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return s.getUser(ctx, "email = ? COLLATE NOCASE", email)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		FROM users WHERE `+where, arg)

	var user persistence.User
	var isAdmin int
	var createdAt, updatedAt string
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &isAdmin, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, mapSQLiteError(err)
	}
	user.IsAdmin = isAdmin != 0

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return user, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
