package utils

import (
	"math/rand"

	"github.com/nmgtoursjam/tours-backend/models"
	"gorm.io/gorm"
)

const bookingNumberLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateBookingNumber returns a customer-facing reference like
// NMG-7K2P9QX4, unique across the bookings table. The shared rand source
// keeps concurrent requests on independent sequences; a per-call
// time-seeded source would hand two requests in the same nanosecond the
// same number and fail one of them on the unique index.
func GenerateBookingNumber(tx *gorm.DB) (string, error) {
	for {
		b := make([]byte, bookingNumberLength)
		for i := range b {
			b[i] = letterBytes[rand.Intn(len(letterBytes))]
		}
		number := "NMG-" + string(b)

		var booking models.Booking
		err := tx.Where("booking_number = ?", number).First(&booking).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}
