// Package redisaudit appends booking events to a capped Redis list, giving
// operators a durable audit trail outside the process.
package redisaudit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/room-booking/internal/booking"
)

// Config carries the Redis connection settings for the audit trail.
type Config struct {
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	// MaxEntries caps the audit list; zero keeps the default of 10000.
	MaxEntries int64
}

// Trail is a notify.Observer that records booking events in Redis.
type Trail struct {
	client     *redis.Client
	key        string
	maxEntries int64
	now        func() time.Time
}

type entry struct {
	Event         string    `json:"event"`
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id,omitempty"`
	RequesterID   string    `json:"requester_id,omitempty"`
	Start         time.Time `json:"start,omitempty"`
	End           time.Time `json:"end,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// New connects to Redis and verifies the connection before returning the
// audit trail observer.
func New(cfg Config) (*Trail, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	return &Trail{
		client:     client,
		key:        cfg.KeyPrefix + "audit:reservations",
		maxEntries: maxEntries,
		now:        time.Now,
	}, nil
}

// Close releases the Redis connection.
func (t *Trail) Close() error {
	return t.client.Close()
}

// SetClock overrides the time source. Intended for tests.
func (t *Trail) SetClock(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// OnReservationCreated appends a creation record to the audit list.
func (t *Trail) OnReservationCreated(ctx context.Context, res booking.Reservation) error {
	return t.append(ctx, entry{
		Event:         "reservation_created",
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		RequesterID:   res.RequesterID,
		Start:         res.Start,
		End:           res.End,
		RecordedAt:    t.now().UTC(),
	})
}

// OnReservationCancelled appends a cancellation record to the audit list.
func (t *Trail) OnReservationCancelled(ctx context.Context, reservationID string) error {
	return t.append(ctx, entry{
		Event:         "reservation_cancelled",
		ReservationID: reservationID,
		RecordedAt:    t.now().UTC(),
	})
}

// Entries returns up to limit most recent audit records, newest first.
func (t *Trail) Entries(ctx context.Context, limit int64) ([]string, error) {
	if limit <= 0 {
		limit = t.maxEntries
	}
	return t.client.LRange(ctx, t.key, 0, limit-1).Result()
}

func (t *Trail) append(ctx context.Context, e entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	pipe := t.client.TxPipeline()
	pipe.LPush(ctx, t.key, payload)
	pipe.LTrim(ctx, t.key, 0, t.maxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
