package notify

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/booking"
)

// AuditLogger is an observer that writes booking events to the structured
// log, serving as the in-process audit side channel.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger constructs the observer.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger.With("component", "audit")}
}

// OnReservationCreated records a creation event.
func (a *AuditLogger) OnReservationCreated(ctx context.Context, res booking.Reservation) error {
	a.logger.InfoContext(ctx, "reservation created",
		"reservation_id", res.ID,
		"room_id", res.RoomID,
		"requester_id", res.RequesterID,
		"start", res.Start,
		"end", res.End,
	)
	return nil
}

// OnReservationCancelled records a cancellation event.
func (a *AuditLogger) OnReservationCancelled(ctx context.Context, reservationID string) error {
	a.logger.InfoContext(ctx, "reservation cancelled", "reservation_id", reservationID)
	return nil
}
