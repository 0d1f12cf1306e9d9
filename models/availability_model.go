package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Availability is the per-(tour, date) capacity ledger row. Slots is the
// total bookable capacity for that day and Booked the count already
// committed to pending or confirmed bookings. Invariant: 0 <= Booked <= Slots.
type Availability struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TourID    uuid.UUID `gorm:"not null;uniqueIndex:idx_tour_date" json:"tour_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_tour_date" json:"date"`
	Slots     int       `gorm:"not null" json:"slots"`
	Booked    int       `gorm:"not null;default:0" json:"booked"`
	IsBlocked bool      `gorm:"not null;default:false" json:"is_blocked"`

	Tour Tour `gorm:"foreignkey:TourID" json:"tour,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Availability) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
