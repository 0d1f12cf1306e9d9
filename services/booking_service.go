package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/nmgtoursjam/tours-backend/notifications"
	"github.com/nmgtoursjam/tours-backend/utils"
	"gorm.io/gorm"
)

// Indirection points for side effects of a confirmation, swapped in tests.
var (
	sendConfirmationEmail = notifications.SendBookingConfirmation
	attachVoucher         = GenerateBookingVoucher
)

type CreateBookingInput struct {
	TourID          uuid.UUID
	TourDate        time.Time
	Guests          int
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string
}

// CreateBooking inserts a PENDING booking and eagerly commits its guest
// count to the availability ledger in the same transaction. Capacity is
// reserved at request time, before payment: an abandoned pending booking
// keeps holding its places (there is no expiry sweep).
func CreateBooking(userID uuid.UUID, input CreateBookingInput) (*models.Booking, error) {
	if input.Guests < 1 {
		return nil, &ValidationError{Message: "at least one guest is required"}
	}

	var tour models.Tour
	if err := database.DB.Where("id = ? AND is_active = ?", input.TourID, true).First(&tour).Error; err != nil {
		return nil, err
	}
	if input.Guests > tour.MaxGroupSize {
		return nil, &ValidationError{Message: fmt.Sprintf("this tour takes at most %d guests", tour.MaxGroupSize)}
	}

	if !CanCommit(input.TourID, input.TourDate, input.Guests) {
		remaining := 0
		if slot, err := GetAvailability(input.TourID, input.TourDate); err == nil {
			remaining = RemainingCapacity(slot)
		}
		return nil, &CapacityError{Remaining: remaining}
	}

	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		number, err := utils.GenerateBookingNumber(tx)
		if err != nil {
			return err
		}

		booking = models.Booking{
			BookingNumber:   number,
			UserID:          userID,
			TourID:          tour.ID,
			TourDate:        Day(input.TourDate),
			Guests:          input.Guests,
			TotalPrice:      tour.Price * float64(input.Guests),
			Currency:        tour.Currency,
			GuestName:       input.GuestName,
			GuestEmail:      input.GuestEmail,
			GuestPhone:      input.GuestPhone,
			SpecialRequests: input.SpecialRequests,
			Status:          models.BookingStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		// The conditional update is the real guard: if another request
		// took the last places since the pre-check, this fails and the
		// booking insert rolls back with it.
		return CommitSlots(tx, tour.ID, input.TourDate, input.Guests)
	})
	if err != nil {
		return nil, err
	}

	booking.Tour = tour
	return &booking, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED/SUCCEEDED and records
// the payment reference. Capacity was committed at creation, so the ledger
// is not touched. Idempotent: a booking that is already confirmed (or was
// cancelled meanwhile) is left alone and no second email goes out. A
// missing booking is logged and swallowed because webhook delivery is
// eventually consistent with booking creation.
func ConfirmBooking(bookingID uuid.UUID, paymentIntentID string) error {
	var booking models.Booking
	if err := database.DB.Preload("Tour").First(&booking, "id = ?", bookingID).Error; err != nil {
		if IsNotFound(err) {
			log.Printf("Confirm for unknown booking %s, ignoring", bookingID)
			return nil
		}
		return err
	}

	res := database.DB.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusPending).
		Updates(map[string]interface{}{
			"status":            models.BookingStatusConfirmed,
			"payment_status":    models.PaymentStatusSucceeded,
			"payment_intent_id": paymentIntentID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("Booking %s already processed (status %s), confirm is a no-op", bookingID, booking.Status)
		return nil
	}

	go sendConfirmationEmail(notifications.BookingConfirmation{
		CustomerName:  booking.GuestName,
		CustomerEmail: booking.GuestEmail,
		BookingNumber: booking.BookingNumber,
		TourTitle:     booking.Tour.Title,
		TourDate:      booking.TourDate.Format("Monday, January 2, 2006"),
		Guests:        booking.Guests,
		TotalPrice:    fmt.Sprintf("%s $%.2f", booking.Currency, booking.TotalPrice),
		MeetingPoint:  booking.Tour.MeetingPoint,
	})
	go attachVoucher(booking.ID)

	log.Printf("✅ Booking %s confirmed", booking.BookingNumber)
	return nil
}

// FailBooking cancels a PENDING booking after a failed payment and gives
// its places back to the ledger. Idempotent: only the PENDING -> CANCELLED
// transition releases, so a replayed failure event cannot double-release.
func FailBooking(bookingID uuid.UUID) error {
	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if IsNotFound(err) {
			log.Printf("Payment failure for unknown booking %s, ignoring", bookingID)
			return nil
		}
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", bookingID, models.BookingStatusPending).
			Updates(map[string]interface{}{
				"status":         models.BookingStatusCancelled,
				"payment_status": models.PaymentStatusFailed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Printf("Booking %s not pending (status %s), fail is a no-op", bookingID, booking.Status)
			return nil
		}
		return ReleaseSlots(tx, booking.TourID, booking.TourDate, booking.Guests)
	})
}

// RefundBooking records a full or partial refund. Capacity goes back to the
// ledger only on the first refund event and only when the tour date has not
// passed yet: a slot for a day that is over is moot.
func RefundBooking(bookingID uuid.UUID, amount float64, full bool) error {
	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if IsNotFound(err) {
			log.Printf("Refund for unknown booking %s, ignoring", bookingID)
			return nil
		}
		return err
	}

	newStatus := models.PaymentStatusPartiallyRefunded
	if full {
		newStatus = models.PaymentStatusRefunded
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		// First refund for this booking. The check and the state flip are
		// one conditional update, so concurrent duplicate deliveries cannot
		// both win the transition and release twice. A booking that was
		// cancelled earlier (payment FAILED) already gave its places back
		// and matches neither branch.
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status IN ?", bookingID,
				[]string{models.PaymentStatusPending, models.PaymentStatusSucceeded}).
			Updates(map[string]interface{}{
				"payment_status": newStatus,
				"refund_amount":  amount,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if Day(booking.TourDate).Before(Day(time.Now())) {
				return nil
			}
			return ReleaseSlots(tx, booking.TourID, booking.TourDate, booking.Guests)
		}

		// Follow-up to a partial refund: the amount grows or the refund
		// becomes full, but the places are already back on the ledger.
		res = tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ?", bookingID, models.PaymentStatusPartiallyRefunded).
			Updates(map[string]interface{}{
				"payment_status": newStatus,
				"refund_amount":  amount,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Printf("Booking %s not refundable (payment status %s), refund is a no-op", bookingID, booking.PaymentStatus)
		}
		return nil
	})
}

// GetBookingByPaymentIntent looks a booking up by the payment reference the
// gateway attached at confirmation time.
func GetBookingByPaymentIntent(paymentIntentID string) (*models.Booking, error) {
	var booking models.Booking
	err := database.DB.Where("payment_intent_id = ?", paymentIntentID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// SetCheckoutSession records the gateway checkout session created for a
// booking.
func SetCheckoutSession(bookingID uuid.UUID, sessionID string) error {
	return database.DB.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("checkout_session_id", sessionID).Error
}
