package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("booking: room not found")
	// ErrReservationNotFound is returned when no active reservation carries the given id.
	ErrReservationNotFound = errors.New("booking: reservation not found")
	// ErrReservationConflict is returned when the candidate interval overlaps an
	// active reservation or the room is saturated.
	ErrReservationConflict = errors.New("booking: reservation conflict")
	// ErrInvalidInterval is returned when end <= start or the interval starts in the past.
	ErrInvalidInterval = errors.New("booking: invalid interval")
	// ErrForbidden is returned when the requester does not own the reservation.
	ErrForbidden = errors.New("booking: forbidden")
)

// StorageError wraps a failure reported by the storage collaborator. The
// engine rolls back any in-memory mutation before surfacing it.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("booking: storage failure during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage failure.
func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
