package booking

import "time"

// Room is the aggregate owning a reservation ledger and the state derived
// from it. A room exclusively owns its reservations; none outlives the room.
type Room struct {
	ID       string
	Name     string
	Capacity int
	Location string

	ledger  Ledger
	state   RoomState
	ceiling int
}

// NewRoom constructs an empty room with the default saturation ceiling.
func NewRoom(id, name string, capacity int, location string) *Room {
	r := &Room{
		ID:       id,
		Name:     name,
		Capacity: capacity,
		Location: location,
		ceiling:  DefaultSaturationCeiling,
	}
	r.recompute()
	return r
}

// Rehydrate rebuilds a room from persisted fields and reservations, deriving
// the state from the restored ledger. Reservations that would violate the
// overlap invariant are rejected.
func Rehydrate(id, name string, capacity int, location string, reservations []Reservation) (*Room, error) {
	r := NewRoom(id, name, capacity, location)
	for _, res := range reservations {
		if err := r.ledger.Add(res); err != nil {
			return nil, err
		}
	}
	r.recompute()
	return r, nil
}

// SetSaturationCeiling overrides the reservation count that forces the room
// unavailable. Values below one fall back to the default.
func (r *Room) SetSaturationCeiling(ceiling int) {
	if ceiling < 1 {
		ceiling = DefaultSaturationCeiling
	}
	r.ceiling = ceiling
	r.recompute()
}

// State returns the current derived state.
func (r *Room) State() RoomState {
	if r == nil {
		return StateAvailable
	}
	return r.state
}

// ReservationCount returns the ledger cardinality.
func (r *Room) ReservationCount() int {
	if r == nil {
		return 0
	}
	return r.ledger.Len()
}

// CheckAvailability reports whether [start, end) can be booked in the room's
// current state. An unavailable room short-circuits to false without
// consulting the ledger; at the ceiling every attempt is rejected, so the
// shortcut cannot misreport a free slot.
func (r *Room) CheckAvailability(start, end time.Time) bool {
	if r == nil {
		return false
	}
	switch r.state {
	case StateUnavailable:
		return false
	default:
		return r.ledger.CanBook(start, end)
	}
}

// AddReservation books [start, end) through the current state, appends to the
// ledger and recomputes the derived state.
func (r *Room) AddReservation(res Reservation) error {
	if !r.CheckAvailability(res.Start, res.End) {
		if !ValidInterval(res.Start, res.End) {
			return ErrInvalidInterval
		}
		return ErrReservationConflict
	}
	if err := r.ledger.Add(res); err != nil {
		return err
	}
	r.recompute()
	return nil
}

// CancelReservation removes the reservation with the given id, recomputes the
// state and returns the removed entry.
func (r *Room) CancelReservation(reservationID string) (Reservation, error) {
	res, err := r.ledger.Remove(reservationID)
	if err != nil {
		return Reservation{}, err
	}
	r.recompute()
	return res, nil
}

// RestoreReservation re-inserts a previously removed reservation. It is the
// compensating action when persisting a cancellation fails.
func (r *Room) RestoreReservation(res Reservation) error {
	if err := r.ledger.Add(res); err != nil {
		return err
	}
	r.recompute()
	return nil
}

// FindReservation returns the active reservation with the given id.
func (r *Room) FindReservation(reservationID string) (Reservation, bool) {
	if r == nil {
		return Reservation{}, false
	}
	return r.ledger.Find(reservationID)
}

// Reservations returns a copy of the active reservations.
func (r *Room) Reservations() []Reservation {
	if r == nil {
		return nil
	}
	return r.ledger.Reservations()
}

// ReservationsForDate filters active reservations by the calendar date of
// their start instant.
func (r *Room) ReservationsForDate(date time.Time) []Reservation {
	if r == nil {
		return nil
	}
	return r.ledger.ListForDate(date)
}

func (r *Room) recompute() {
	r.state = DeriveState(r.ledger.Len(), r.ceiling)
}
