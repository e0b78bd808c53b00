package notify

import (
	"context"

	"github.com/example/room-booking/internal/booking"
)

// Observer receives best-effort callbacks when reservations are created or
// cancelled. Delivery is at-least-attempted per registered observer with no
// ordering guarantee between observers and no retry; a failing observer never
// fails the booking that triggered it.
type Observer interface {
	OnReservationCreated(ctx context.Context, res booking.Reservation) error
	OnReservationCancelled(ctx context.Context, reservationID string) error
}
