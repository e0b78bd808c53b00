package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomStore captures the persistence operations needed by the room service.
type RoomStore interface {
	InsertRoom(ctx context.Context, room persistence.Room) error
	LoadRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRooms(ctx context.Context) ([]persistence.Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// RoomService orchestrates validation, authorization, and persistence for the
// room catalog.
type RoomService struct {
	rooms       RoomStore
	evict       func(roomID string)
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
// evict, when non-nil, is invoked after a room deletion commits.
func NewRoomService(rooms RoomStore, evict func(roomID string), idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, evict, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomStore, evict func(roomID string), idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, evict: evict, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	record := persistence.Room{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Input.Name),
		Location:  strings.TrimSpace(params.Input.Location),
		Capacity:  params.Input.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.rooms.InsertRoom(ctx, record); err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = roomFromRecord(record)
	return
}

// GetRoom returns a single catalog entry.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	record, err := s.rooms.LoadRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		s.loggerWith(ctx, "GetRoom", "room_id", roomID).
			ErrorContext(ctx, "failed to load room", "error", err, "error_kind", ErrorKind(err))
		return
	}

	room = roomFromRecord(record)
	return
}

// ListRooms returns one page of the catalog, ordered by name.
func (s *RoomService) ListRooms(ctx context.Context, params ListRoomsParams) (page RoomPage, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListRooms",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(page.Rooms)).InfoContext(ctx, "rooms listed")
	}()

	pageNum := params.Page
	if pageNum < 1 {
		pageNum = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	records, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	page = RoomPage{Total: len(records), Page: pageNum, PerPage: perPage}

	offset := (pageNum - 1) * perPage
	if offset >= len(records) {
		page.Rooms = []Room{}
		return
	}
	end := offset + perPage
	if end > len(records) {
		end = len(records)
	}

	page.Rooms = make([]Room, 0, end-offset)
	for _, record := range records[offset:end] {
		page.Rooms = append(page.Rooms, roomFromRecord(record))
	}
	return
}

// DeleteRoom removes a room and its reservations when requested by an
// administrator.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.rooms == nil {
		return fmt.Errorf("room store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		err = mapRoomRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if s.evict != nil {
		s.evict(roomID)
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}

func roomFromRecord(record persistence.Room) Room {
	return Room{
		ID:        record.ID,
		Name:      record.Name,
		Location:  record.Location,
		Capacity:  record.Capacity,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
