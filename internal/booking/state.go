package booking

// RoomState describes the derived lifecycle state of a room. It is always a
// pure function of the reservation ledger's cardinality and is recomputed
// after every mutation, never set directly by callers.
type RoomState string

const (
	// StateAvailable indicates the room holds no active reservations.
	StateAvailable RoomState = "available"
	// StatePartiallyAvailable indicates at least one active reservation exists
	// but the room is not saturated.
	StatePartiallyAvailable RoomState = "partially_available"
	// StateUnavailable indicates the room reached its saturation ceiling and
	// rejects every further booking attempt.
	StateUnavailable RoomState = "unavailable"
)

// DefaultSaturationCeiling is the reservation count at which a room is forced
// unavailable. The value matches the historical policy of the service.
const DefaultSaturationCeiling = 16

// DeriveState computes the room state for the given ledger cardinality.
//
// Policy: zero reservations mean available, reaching the ceiling means
// unavailable, anything in between is partially available. A room with a
// single reservation is partially available; earlier revisions of the service
// disagreed on this point and the rule here is the one the system commits to.
func DeriveState(count, ceiling int) RoomState {
	if ceiling <= 0 {
		ceiling = DefaultSaturationCeiling
	}
	switch {
	case count == 0:
		return StateAvailable
	case count >= ceiling:
		return StateUnavailable
	default:
		return StatePartiallyAvailable
	}
}
