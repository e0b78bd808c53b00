package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// BookingStore captures the persistence operations needed by the booking service.
type BookingStore interface {
	LoadRoom(ctx context.Context, id string) (persistence.Room, error)
	LoadReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error)
	InsertReservation(ctx context.Context, res persistence.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
}

// ReservationNotifier receives booking lifecycle events after they commit.
type ReservationNotifier interface {
	ReservationCreated(res booking.Reservation)
	ReservationCancelled(reservationID string)
}

// BookingService owns the in-memory room aggregates and serializes every
// mutation per room, so two requests for the same room never interleave
// between the availability check and the commit.
type BookingService struct {
	store    BookingStore
	notifier ReservationNotifier

	locks *booking.KeyedMutex

	mu    sync.RWMutex
	rooms map[string]*booking.Room

	idGenerator func() string
	now         func() time.Time
	ceiling     int
	logger      *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(store BookingStore, notifier ReservationNotifier, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(store, notifier, idGenerator, now, 0, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a saturation
// ceiling override and a specified logger.
func NewBookingServiceWithLogger(store BookingStore, notifier ReservationNotifier, idGenerator func() string, now func() time.Time, ceiling int, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		store:       store,
		notifier:    notifier,
		locks:       booking.NewKeyedMutex(),
		rooms:       make(map[string]*booking.Room),
		idGenerator: idGenerator,
		now:         now,
		ceiling:     ceiling,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateReservation books a room for the requested interval. The check and
// the ledger append happen under the room's lock; the persisted record is
// rolled out of the ledger again if storage rejects it.
func (s *BookingService) CreateReservation(ctx context.Context, params CreateReservationParams) (result Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	roomID := strings.TrimSpace(params.Input.RoomID)
	logger := s.loggerWith(ctx, "CreateReservation",
		"principal_id", params.Principal.UserID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", result.ID).InfoContext(ctx, "reservation created")
	}()

	vErr := s.validateReservationInput(roomID, params.Input.Start, params.Input.End)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	res, err := s.appendReservation(ctx, logger, roomID, params)
	if err != nil {
		return
	}

	// The room lock is released by now; observers never extend the critical
	// section.
	if s.notifier != nil {
		s.notifier.ReservationCreated(res)
	}

	result = reservationFromDomain(res)
	return
}

// appendReservation holds the room lock while it hydrates the room, appends
// the booking to the ledger and persists it, rolling the ledger back if
// storage rejects the insert.
func (s *BookingService) appendReservation(ctx context.Context, logger *slog.Logger, roomID string, params CreateReservationParams) (booking.Reservation, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomFor(ctx, roomID)
	if err != nil {
		return booking.Reservation{}, err
	}

	res := booking.Reservation{
		ID:          s.idGenerator(),
		RoomID:      roomID,
		RequesterID: params.Principal.UserID,
		Start:       params.Input.Start,
		End:         params.Input.End,
		CreatedAt:   s.now(),
	}

	if err := room.AddReservation(res); err != nil {
		return booking.Reservation{}, err
	}

	record := persistence.Reservation{
		ID:          res.ID,
		RoomID:      res.RoomID,
		RequesterID: res.RequesterID,
		Start:       res.Start,
		End:         res.End,
		CreatedAt:   res.CreatedAt,
	}
	if persistErr := s.store.InsertReservation(ctx, record); persistErr != nil {
		if _, rbErr := room.CancelReservation(res.ID); rbErr != nil {
			logger.ErrorContext(ctx, "rollback after storage failure failed", "error", rbErr)
		}
		err := mapBookingRepoError(persistErr)
		if !errors.Is(err, ErrNotFound) {
			err = &booking.StorageError{Op: "insert reservation", Err: persistErr}
		}
		return booking.Reservation{}, err
	}

	return res, nil
}

// CancelReservation removes a booking. Only the requester who created it or
// an administrator may cancel.
func (s *BookingService) CancelReservation(ctx context.Context, params CancelReservationParams) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("booking store not configured")
	}

	roomID := strings.TrimSpace(params.RoomID)
	logger := s.loggerWith(ctx, "CancelReservation",
		"principal_id", params.Principal.UserID,
		"room_id", roomID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	if roomID == "" || strings.TrimSpace(params.ReservationID) == "" {
		err = ErrNotFound
		return
	}

	if err = s.removeReservation(ctx, logger, roomID, params); err != nil {
		return
	}

	// The room lock is released by now; observers never extend the critical
	// section.
	if s.notifier != nil {
		s.notifier.ReservationCancelled(params.ReservationID)
	}
	return
}

// removeReservation holds the room lock while it checks ownership, drops the
// booking from the ledger and deletes it from storage, restoring the ledger
// entry if storage rejects the delete.
func (s *BookingService) removeReservation(ctx context.Context, logger *slog.Logger, roomID string, params CancelReservationParams) error {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomFor(ctx, roomID)
	if err != nil {
		return err
	}

	existing, ok := room.FindReservation(params.ReservationID)
	if !ok {
		return ErrNotFound
	}
	if existing.RequesterID != params.Principal.UserID && !params.Principal.IsAdmin {
		return booking.ErrForbidden
	}

	removed, err := room.CancelReservation(params.ReservationID)
	if err != nil {
		if errors.Is(err, booking.ErrReservationNotFound) {
			err = ErrNotFound
		}
		return err
	}

	if persistErr := s.store.DeleteReservation(ctx, params.ReservationID); persistErr != nil {
		if errors.Is(persistErr, persistence.ErrNotFound) {
			// Ledger and storage already agree; nothing to compensate.
			return nil
		}
		if rbErr := room.RestoreReservation(removed); rbErr != nil {
			logger.ErrorContext(ctx, "rollback after storage failure failed", "error", rbErr)
		}
		return &booking.StorageError{Op: "delete reservation", Err: persistErr}
	}

	return nil
}

// CheckAvailability reports whether the room can take [start, end) right now.
// The answer is advisory; a later CreateReservation can still lose the slot.
func (s *BookingService) CheckAvailability(ctx context.Context, query AvailabilityQuery) (available bool, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	roomID := strings.TrimSpace(query.RoomID)
	logger := s.loggerWith(ctx, "CheckAvailability", "room_id", roomID)

	if !booking.ValidInterval(query.Start, query.End) {
		err = booking.ErrInvalidInterval
		logger.ErrorContext(ctx, "availability check rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomFor(ctx, roomID)
	if err != nil {
		logger.ErrorContext(ctx, "availability check failed", "error", err, "error_kind", ErrorKind(err))
		return
	}

	available = room.CheckAvailability(query.Start, query.End)
	return
}

// RoomStatus returns the derived state and reservation count for a room.
func (s *BookingService) RoomStatus(ctx context.Context, roomID string) (status RoomStatus, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	roomID = strings.TrimSpace(roomID)
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomFor(ctx, roomID)
	if err != nil {
		return
	}

	status = RoomStatus{
		RoomID:           room.ID,
		Name:             room.Name,
		State:            room.State(),
		ReservationCount: room.ReservationCount(),
	}
	return
}

// ListReservationsForDate returns a room's reservations whose start falls on
// the given calendar date.
func (s *BookingService) ListReservationsForDate(ctx context.Context, roomID string, date time.Time) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	roomID = strings.TrimSpace(roomID)
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomFor(ctx, roomID)
	if err != nil {
		return
	}

	for _, res := range room.ReservationsForDate(date) {
		reservations = append(reservations, reservationFromDomain(res))
	}
	return
}

// EvictRoom drops the cached aggregate for a room. The room service calls
// this after a deletion so a later booking attempt re-reads storage.
func (s *BookingService) EvictRoom(roomID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
}

// roomFor returns the cached aggregate for roomID, hydrating it from storage
// on first use. Callers must hold the room's keyed lock.
func (s *BookingService) roomFor(ctx context.Context, roomID string) (*booking.Room, error) {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return room, nil
	}

	record, err := s.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	history, err := s.store.LoadReservationsForRoom(ctx, roomID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}

	reservations := make([]booking.Reservation, 0, len(history))
	for _, rec := range history {
		reservations = append(reservations, booking.Reservation{
			ID:          rec.ID,
			RoomID:      rec.RoomID,
			RequesterID: rec.RequesterID,
			Start:       rec.Start,
			End:         rec.End,
			CreatedAt:   rec.CreatedAt,
		})
	}

	room, err = booking.Rehydrate(record.ID, record.Name, record.Capacity, record.Location, reservations)
	if err != nil {
		return nil, fmt.Errorf("failed to rehydrate room %s: %w", roomID, err)
	}
	if s.ceiling > 0 {
		room.SetSaturationCeiling(s.ceiling)
	}

	s.mu.Lock()
	s.rooms[roomID] = room
	s.mu.Unlock()
	return room, nil
}

func (s *BookingService) validateReservationInput(roomID string, start, end time.Time) *ValidationError {
	vErr := &ValidationError{}

	if roomID == "" {
		vErr.add("room_id", "room_id is required")
	}
	if !booking.ValidInterval(start, end) {
		vErr.add("interval", "start must be before end")
	} else if start.Before(s.now()) {
		vErr.add("start", "start must not be in the past")
	}

	return vErr
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func reservationFromDomain(res booking.Reservation) Reservation {
	return Reservation{
		ID:          res.ID,
		RoomID:      res.RoomID,
		RequesterID: res.RequesterID,
		Start:       res.Start,
		End:         res.End,
		CreatedAt:   res.CreatedAt,
	}
}
