package services

import (
	"context"
	"time"

	"github.com/yeremiapane/table-reservation/models"
)

const EventReservationCreated = "reservation_created"

// ReservationCreatedEvent is emitted after a booking is committed.
// Contact details are not included.
type ReservationCreatedEvent struct {
	ReservationID uint   `json:"reservation_id"`
	TableID       int    `json:"stolik_id"`
	Date          string `json:"data"`
	Time          string `json:"godzina"`
	PartySize     int    `json:"liczba_osob"`
	CreatedAt     string `json:"created_at"`
}

func NewReservationCreatedEvent(r models.Reservation) ReservationCreatedEvent {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return ReservationCreatedEvent{
		ReservationID: r.ID,
		TableID:       r.TableID,
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
		CreatedAt:     created.UTC().Format(time.RFC3339),
	}
}

// EventPublisher receives reservation events. Implementations must not block
// for long; errors are logged by the caller and never fail a booking.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev ReservationCreatedEvent) error
}
