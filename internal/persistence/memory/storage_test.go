package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
)

func testRoom(id, name string) persistence.Room {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return persistence.Room{
		ID:        id,
		Name:      name,
		Capacity:  8,
		Location:  "Floor 2",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testReservation(id, roomID string, hour int) persistence.Reservation {
	start := time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	return persistence.Reservation{
		ID:          id,
		RoomID:      roomID,
		RequesterID: "user-1",
		Start:       start,
		End:         start.Add(time.Hour),
		CreatedAt:   start,
	}
}

func TestStorage_Rooms(t *testing.T) {
	ctx := context.Background()
	store := memory.Open()

	require.NoError(t, store.InsertRoom(ctx, testRoom("room-1", "Aurora")))
	require.NoError(t, store.InsertRoom(ctx, testRoom("room-2", "borealis")))

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := store.InsertRoom(ctx, testRoom("room-1", "Other"))
		assert.ErrorIs(t, err, persistence.ErrDuplicate)
	})

	t.Run("non-positive capacity rejected", func(t *testing.T) {
		room := testRoom("room-3", "Cramped")
		room.Capacity = 0
		err := store.InsertRoom(ctx, room)
		assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
	})

	t.Run("load round trip", func(t *testing.T) {
		room, err := store.LoadRoom(ctx, "room-1")
		require.NoError(t, err)
		assert.Equal(t, "Aurora", room.Name)
	})

	t.Run("missing room", func(t *testing.T) {
		_, err := store.LoadRoom(ctx, "missing")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("list ordered by name case-insensitively", func(t *testing.T) {
		rooms, err := store.ListRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, "room-1", rooms[0].ID)
		assert.Equal(t, "room-2", rooms[1].ID)
	})
}

func TestStorage_Reservations(t *testing.T) {
	ctx := context.Background()
	store := memory.Open()
	require.NoError(t, store.InsertRoom(ctx, testRoom("room-1", "Aurora")))

	t.Run("insert requires existing room", func(t *testing.T) {
		err := store.InsertReservation(ctx, testReservation("res-1", "ghost", 10))
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("insert and load sorted by start", func(t *testing.T) {
		require.NoError(t, store.InsertReservation(ctx, testReservation("res-2", "room-1", 14)))
		require.NoError(t, store.InsertReservation(ctx, testReservation("res-1", "room-1", 10)))

		loaded, err := store.LoadReservationsForRoom(ctx, "room-1")
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, "res-1", loaded[0].ID)
		assert.Equal(t, "res-2", loaded[1].ID)
	})

	t.Run("inverted interval rejected", func(t *testing.T) {
		res := testReservation("res-3", "room-1", 10)
		res.End = res.Start.Add(-time.Hour)
		err := store.InsertReservation(ctx, res)
		assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteReservation(ctx, "res-2"))
		assert.ErrorIs(t, store.DeleteReservation(ctx, "res-2"), persistence.ErrNotFound)
	})

	t.Run("room deletion cascades", func(t *testing.T) {
		require.NoError(t, store.DeleteRoom(ctx, "room-1"))
		loaded, err := store.LoadReservationsForRoom(ctx, "room-1")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestStorage_Users(t *testing.T) {
	ctx := context.Background()
	store := memory.Open()

	user := persistence.User{ID: "user-1", Email: "alex@example.com", DisplayName: "Alex"}
	require.NoError(t, store.CreateUser(ctx, user))

	t.Run("duplicate email rejected case-insensitively", func(t *testing.T) {
		dup := persistence.User{ID: "user-2", Email: "ALEX@example.com"}
		assert.ErrorIs(t, store.CreateUser(ctx, dup), persistence.ErrDuplicate)
	})

	t.Run("lookup by email", func(t *testing.T) {
		found, err := store.GetUserByEmail(ctx, "Alex@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", found.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUser(ctx, "ghost")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})
}

func TestStorage_Sessions(t *testing.T) {
	ctx := context.Background()
	store := memory.Open()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	session := persistence.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Token:     "token-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	t.Run("get by token", func(t *testing.T) {
		found, err := store.GetSession(ctx, "token-1")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", found.ID)
	})

	t.Run("revoke", func(t *testing.T) {
		revoked, err := store.RevokeSession(ctx, "token-1", now.Add(time.Minute))
		require.NoError(t, err)
		require.NotNil(t, revoked.RevokedAt)
	})

	t.Run("expired sessions are dropped", func(t *testing.T) {
		require.NoError(t, store.DeleteExpiredSessions(ctx, now.Add(2*time.Hour)))
		_, err := store.GetSession(ctx, "token-1")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})
}
