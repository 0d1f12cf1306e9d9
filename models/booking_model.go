package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusCompleted = "COMPLETED"
)

const (
	PaymentStatusPending           = "PENDING"
	PaymentStatusSucceeded         = "SUCCEEDED"
	PaymentStatusFailed            = "FAILED"
	PaymentStatusRefunded          = "REFUNDED"
	PaymentStatusPartiallyRefunded = "PARTIALLY_REFUNDED"
)

type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingNumber string    `gorm:"size:20;not null;unique" json:"booking_number"`
	UserID        uuid.UUID `gorm:"not null" json:"user_id"`
	TourID        uuid.UUID `gorm:"not null" json:"tour_id"`
	TourDate      time.Time `gorm:"not null" json:"tour_date"`
	Guests        int       `gorm:"not null" json:"guests"`
	TotalPrice    float64   `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Currency      string    `gorm:"size:3;not null;default:'USD'" json:"currency"`

	GuestName       string `gorm:"size:255;not null" json:"guest_name"`
	GuestEmail      string `gorm:"size:255;not null" json:"guest_email"`
	GuestPhone      string `gorm:"size:50" json:"guest_phone"`
	SpecialRequests string `gorm:"type:text" json:"special_requests"`

	Status        string `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'PENDING'" json:"payment_status"`

	PaymentIntentID   *string  `gorm:"size:255;uniqueIndex" json:"payment_intent_id"`
	CheckoutSessionID *string  `gorm:"size:255" json:"checkout_session_id"`
	RefundAmount      *float64 `gorm:"type:numeric(10,2)" json:"refund_amount"`
	VoucherURL        *string  `gorm:"size:500" json:"voucher_url"`

	Tour Tour `gorm:"foreignkey:TourID" json:"tour,omitempty"`
	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
