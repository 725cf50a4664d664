package models

import (
	"fmt"
	"time"
)

// SlotLayout is the combined date+time grammar used for reservations.
// Month, day, hour and minute accept one or two digits.
const SlotLayout = "2006-1-2 15:4"

// Reservation binds a table, a date, a time, a party size and contact details.
// Date and Time keep the submitted strings verbatim.
type Reservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:imie;type:varchar(50);not null" json:"imie"`
	Email     string    `gorm:"column:email;type:varchar(100);not null" json:"email"`
	Phone     string    `gorm:"column:telefon;type:varchar(20);not null" json:"telefon"`
	PartySize int       `gorm:"column:liczba_osob;not null" json:"liczba_osob"`
	TableID   int       `gorm:"column:stolik_id;not null;index:idx_stolik_data" json:"stolik_id"`
	Date      string    `gorm:"column:data_rezerwacji;type:varchar(20);not null;index:idx_stolik_data" json:"data_rezerwacji"`
	Time      string    `gorm:"column:godzina;type:varchar(10);not null" json:"godzina"`
	CreatedAt time.Time `json:"created_at"`
}

func (Reservation) TableName() string {
	return "rezerwacje"
}

// Slot -> combines Date and Time into a single point in time (UTC)
func (r *Reservation) Slot() (time.Time, error) {
	t, err := time.Parse(SlotLayout, r.Date+" "+r.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("reservation %d: %w", r.ID, err)
	}
	return t, nil
}
