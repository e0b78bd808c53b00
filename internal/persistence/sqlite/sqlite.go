// Package sqlite implements the persistence interfaces on top of a SQLite
// database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/room-booking/internal/persistence"
)

// Timestamps are stored as fixed-width UTC strings so lexicographic order
// matches chronological order and sub-second precision survives a restart.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// Storage provides SQLite-backed repositories for rooms, reservations, users
// and sessions.
type Storage struct {
	db *sql.DB
}

// Open establishes the database connection. Foreign keys are enforced so a
// room deletion cascades to its reservations.
func Open(dsn string) (*Storage, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:bookings.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &Storage{db: db}, nil
}

// DB exposes the underlying handle for test helpers.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTransaction runs fn inside a transaction, rolling back on error.
func (s *Storage) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapSQLiteError translates driver errors into persistence sentinel errors.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return persistence.ErrDuplicate
	}
	if strings.Contains(msg, "CHECK constraint failed") {
		return persistence.ErrConstraintViolation
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return persistence.ErrNotFound
	}
	return err
}
