package booking

import "time"

// Reservation is an active booking of a room for a half-open time interval.
// Reservations are never mutated in place; a change is a cancel followed by a
// new booking.
type Reservation struct {
	ID          string
	RoomID      string
	RequesterID string
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
}

// Ledger is the ordered set of active reservations for one room. It owns the
// no-overlap invariant: after every Add or Remove the stored intervals are
// pairwise disjoint.
type Ledger struct {
	reservations []Reservation
}

// Len returns the number of active reservations.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.reservations)
}

// CanBook reports whether [start, end) is a valid interval that overlaps no
// active reservation. Vacuously true for an empty ledger.
func (l *Ledger) CanBook(start, end time.Time) bool {
	if !ValidInterval(start, end) {
		return false
	}
	return l.PeriodIsFree(start, end)
}

// PeriodIsFree reports whether no active reservation overlaps [start, end).
func (l *Ledger) PeriodIsFree(start, end time.Time) bool {
	if l == nil {
		return true
	}
	for _, res := range l.reservations {
		if Overlaps(res.Start, res.End, start, end) {
			return false
		}
	}
	return true
}

// Add appends a reservation. It fails with ErrReservationConflict when the
// interval overlaps an existing entry, keeping the ledger overlap free even
// if a caller skipped CanBook.
func (l *Ledger) Add(res Reservation) error {
	if !ValidInterval(res.Start, res.End) {
		return ErrInvalidInterval
	}
	if !l.PeriodIsFree(res.Start, res.End) {
		return ErrReservationConflict
	}
	l.reservations = append(l.reservations, res)
	return nil
}

// Remove deletes the reservation with the given id and returns it. It fails
// with ErrReservationNotFound when no active reservation carries the id.
func (l *Ledger) Remove(reservationID string) (Reservation, error) {
	if l == nil {
		return Reservation{}, ErrReservationNotFound
	}
	for i, res := range l.reservations {
		if res.ID == reservationID {
			l.reservations = append(l.reservations[:i], l.reservations[i+1:]...)
			return res, nil
		}
	}
	return Reservation{}, ErrReservationNotFound
}

// Find returns the active reservation with the given id.
func (l *Ledger) Find(reservationID string) (Reservation, bool) {
	if l == nil {
		return Reservation{}, false
	}
	for _, res := range l.reservations {
		if res.ID == reservationID {
			return res, true
		}
	}
	return Reservation{}, false
}

// ListForDate returns the reservations whose start falls on the same calendar
// date as the reference, evaluated in the reference's location.
func (l *Ledger) ListForDate(date time.Time) []Reservation {
	if l == nil || len(l.reservations) == 0 {
		return nil
	}
	y, m, d := date.Date()
	var out []Reservation
	for _, res := range l.reservations {
		ry, rm, rd := res.Start.In(date.Location()).Date()
		if ry == y && rm == m && rd == d {
			out = append(out, res)
		}
	}
	return out
}

// Reservations returns a copy of the active reservations in insertion order.
func (l *Ledger) Reservations() []Reservation {
	if l == nil || len(l.reservations) == 0 {
		return nil
	}
	out := make([]Reservation, len(l.reservations))
	copy(out, l.reservations)
	return out
}
