package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/table-reservation/models"
)

// ReservationWindow is how long a table stays occupied by one reservation.
const ReservationWindow = 5 * time.Hour

// ParseSlot combines a date string and a time-of-day string into one instant.
func ParseSlot(date, hour string) (time.Time, error) {
	t, err := time.Parse(models.SlotLayout, date+" "+hour)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	return t, nil
}

// CheckConflict decides whether a reservation starting at candidate may be
// accepted given the existing reservations for the same table and date.
// Any existing reservation less than ReservationWindow away rejects it;
// exactly ReservationWindow apart is accepted.
func CheckConflict(candidate time.Time, existing []models.Reservation) error {
	for i := range existing {
		existingAt, err := existing[i].Slot()
		if err != nil {
			return fmt.Errorf("stored reservation has invalid slot: %w", err)
		}
		delta := candidate.Sub(existingAt)
		if delta < 0 {
			delta = -delta
		}
		if delta < ReservationWindow {
			return fmt.Errorf("%w: reservation %d at %s %s",
				ErrSlotConflict, existing[i].ID, existing[i].Date, existing[i].Time)
		}
	}
	return nil
}
