package booking

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRoom_StateTransitions(t *testing.T) {
	t.Run("new room is available", func(t *testing.T) {
		room := NewRoom("room-1", "Aurora", 8, "Floor 2")
		if room.State() != StateAvailable {
			t.Fatalf("expected available, got %q", room.State())
		}
	})

	t.Run("first booking makes the room partially available", func(t *testing.T) {
		room := NewRoom("room-1", "Aurora", 8, "Floor 2")
		if err := room.AddReservation(reservation("r1", at(10, 0), at(11, 0))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if room.State() != StatePartiallyAvailable {
			t.Fatalf("expected partially available, got %q", room.State())
		}
	})

	t.Run("cancelling the last reservation restores available", func(t *testing.T) {
		room := NewRoom("room-1", "Aurora", 8, "Floor 2")
		_ = room.AddReservation(reservation("r1", at(10, 0), at(11, 0)))

		if _, err := room.CancelReservation("r1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if room.State() != StateAvailable {
			t.Fatalf("expected available, got %q", room.State())
		}
	})

	t.Run("saturation forces unavailable and rejects further bookings", func(t *testing.T) {
		room := NewRoom("room-1", "Aurora", 8, "Floor 2")
		for i := 0; i < DefaultSaturationCeiling; i++ {
			start := at(0, 0).Add(time.Duration(i) * time.Hour)
			err := room.AddReservation(reservation(fmt.Sprintf("r%d", i), start, start.Add(time.Hour)))
			if err != nil {
				t.Fatalf("booking %d failed: %v", i, err)
			}
		}
		if room.State() != StateUnavailable {
			t.Fatalf("expected unavailable at ceiling, got %q", room.State())
		}

		// The 17th attempt targets a genuinely free slot but the room is saturated.
		free := at(0, 0).AddDate(0, 0, 1)
		err := room.AddReservation(reservation("r-extra", free, free.Add(time.Hour)))
		if !errors.Is(err, ErrReservationConflict) {
			t.Fatalf("expected ErrReservationConflict, got %v", err)
		}

		// Cancelling one drops the room back below the ceiling.
		if _, err := room.CancelReservation("r0"); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if room.State() != StatePartiallyAvailable {
			t.Fatalf("expected partially available, got %q", room.State())
		}
	})
}

func TestRoom_CheckAvailability(t *testing.T) {
	t.Run("unavailable short-circuits to false", func(t *testing.T) {
		room := NewRoom("room-1", "Aurora", 8, "Floor 2")
		room.SetSaturationCeiling(1)
		_ = room.AddReservation(reservation("r1", at(10, 0), at(11, 0)))

		if room.State() != StateUnavailable {
			t.Fatalf("expected unavailable, got %q", room.State())
		}
		if room.CheckAvailability(at(14, 0), at(15, 0)) {
			t.Fatal("saturated room reported availability")
		}
	})

	t.Run("consults the ledger otherwise", func(t *testing.T) {
		room := NewRoom("room-1", "Aurora", 8, "Floor 2")
		_ = room.AddReservation(reservation("r1", at(10, 0), at(11, 0)))

		if room.CheckAvailability(at(10, 30), at(11, 30)) {
			t.Fatal("overlapping interval reported available")
		}
		if !room.CheckAvailability(at(11, 0), at(12, 0)) {
			t.Fatal("touching interval reported unavailable")
		}
	})
}

func TestRoom_BookingScenario(t *testing.T) {
	room := NewRoom("room-1", "Aurora", 8, "Floor 2")

	if err := room.AddReservation(reservation("id1", at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("booking [10:00,11:00) failed: %v", err)
	}

	err := room.AddReservation(reservation("id2", at(10, 30), at(11, 30)))
	if !errors.Is(err, ErrReservationConflict) {
		t.Fatalf("expected conflict for [10:30,11:30), got %v", err)
	}

	if err := room.AddReservation(reservation("id3", at(11, 0), at(12, 0))); err != nil {
		t.Fatalf("booking [11:00,12:00) failed: %v", err)
	}

	if _, err := room.CancelReservation("id1"); err != nil {
		t.Fatalf("cancel id1 failed: %v", err)
	}
	if room.ReservationCount() != 1 {
		t.Fatalf("expected 1 reservation, got %d", room.ReservationCount())
	}
	if room.State() != StatePartiallyAvailable {
		t.Fatalf("expected partially available, got %q", room.State())
	}
}

func TestRehydrate(t *testing.T) {
	t.Run("derives state from restored reservations", func(t *testing.T) {
		room, err := Rehydrate("room-1", "Aurora", 8, "Floor 2", []Reservation{
			reservation("r1", at(10, 0), at(11, 0)),
			reservation("r2", at(11, 0), at(12, 0)),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if room.State() != StatePartiallyAvailable {
			t.Fatalf("expected partially available, got %q", room.State())
		}
		if room.ReservationCount() != 2 {
			t.Fatalf("expected 2 reservations, got %d", room.ReservationCount())
		}
	})

	t.Run("rejects overlapping persisted data", func(t *testing.T) {
		_, err := Rehydrate("room-1", "Aurora", 8, "Floor 2", []Reservation{
			reservation("r1", at(10, 0), at(11, 0)),
			reservation("r2", at(10, 30), at(11, 30)),
		})
		if !errors.Is(err, ErrReservationConflict) {
			t.Fatalf("expected ErrReservationConflict, got %v", err)
		}
	})
}

func TestRoom_RestoreReservation(t *testing.T) {
	room := NewRoom("room-1", "Aurora", 8, "Floor 2")
	_ = room.AddReservation(reservation("r1", at(10, 0), at(11, 0)))

	removed, err := room.CancelReservation("r1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := room.RestoreReservation(removed); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if room.ReservationCount() != 1 {
		t.Fatalf("expected 1 reservation after restore, got %d", room.ReservationCount())
	}
	if room.State() != StatePartiallyAvailable {
		t.Fatalf("expected partially available, got %q", room.State())
	}
}
