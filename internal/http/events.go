package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/r3labs/sse/v2"

	"github.com/example/room-booking/internal/booking"
)

const bookingStream = "bookings"

// EventStream fans booking lifecycle events out to connected SSE clients. It
// implements notify.Observer so the dispatcher can feed it.
type EventStream struct {
	server *sse.Server
	logger *slog.Logger
}

// NewEventStream constructs the stream and registers the booking channel.
func NewEventStream(logger *slog.Logger) *EventStream {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(bookingStream)
	return &EventStream{server: server, logger: defaultLogger(logger).With("component", "events")}
}

// Handler exposes the stream at a single endpoint; clients do not need to
// pass the stream query parameter themselves.
func (s *EventStream) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("stream") == "" {
			q := r.URL.Query()
			q.Set("stream", bookingStream)
			r.URL.RawQuery = q.Encode()
		}
		s.server.ServeHTTP(w, r)
	})
}

// Close disconnects every client and shuts the stream down.
func (s *EventStream) Close() {
	if s != nil && s.server != nil {
		s.server.Close()
	}
}

type reservationCreatedEvent struct {
	ReservationID string `json:"reservation_id"`
	RoomID        string `json:"room_id"`
	RequesterID   string `json:"requester_id"`
	Start         string `json:"start"`
	End           string `json:"end"`
}

type reservationCancelledEvent struct {
	ReservationID string `json:"reservation_id"`
}

// OnReservationCreated publishes a creation event to all subscribers.
func (s *EventStream) OnReservationCreated(ctx context.Context, res booking.Reservation) error {
	payload, err := json.Marshal(reservationCreatedEvent{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		RequesterID:   res.RequesterID,
		Start:         res.Start.UTC().Format(time.RFC3339Nano),
		End:           res.End.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	s.server.Publish(bookingStream, &sse.Event{
		Event: []byte("reservation_created"),
		Data:  payload,
	})
	s.logger.DebugContext(ctx, "published creation event", "reservation_id", res.ID)
	return nil
}

// OnReservationCancelled publishes a cancellation event to all subscribers.
func (s *EventStream) OnReservationCancelled(ctx context.Context, reservationID string) error {
	payload, err := json.Marshal(reservationCancelledEvent{ReservationID: reservationID})
	if err != nil {
		return err
	}

	s.server.Publish(bookingStream, &sse.Event{
		Event: []byte("reservation_cancelled"),
		Data:  payload,
	})
	s.logger.DebugContext(ctx, "published cancellation event", "reservation_id", reservationID)
	return nil
}
