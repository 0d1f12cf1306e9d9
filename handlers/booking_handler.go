package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/nmgtoursjam/tours-backend/payments"
	"github.com/nmgtoursjam/tours-backend/services"
)

type CreateBookingRequest struct {
	TourID          string `json:"tour_id" validate:"required,uuid"`
	TourDate        string `json:"tour_date" validate:"required,datetime=2006-01-02"`
	Guests          int    `json:"guests" validate:"required,min=1"`
	GuestName       string `json:"guest_name" validate:"required,min=2"`
	GuestEmail      string `json:"guest_email" validate:"required,email"`
	GuestPhone      string `json:"guest_phone" validate:"required"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

func currentUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	return userID
}

func parseCreateBookingRequest(c *fiber.Ctx) (*services.CreateBookingInput, error) {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.New("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	tourID, _ := uuid.Parse(req.TourID)
	tourDate, _ := time.Parse("2006-01-02", req.TourDate)

	return &services.CreateBookingInput{
		TourID:          tourID,
		TourDate:        tourDate,
		Guests:          req.Guests,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		SpecialRequests: req.SpecialRequests,
	}, nil
}

func bookingErrorResponse(c *fiber.Ctx, err error) error {
	var capacityErr *services.CapacityError
	if errors.As(err, &capacityErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":     capacityErr.Error(),
			"remaining": capacityErr.Remaining,
		})
	}
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	}
	if services.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tour not found"})
	}
	log.Printf("🔥 Failed to create booking: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
}

// CreateBooking creates a PENDING booking and reserves its places. Payment
// is started separately through the checkout endpoint.
func CreateBooking(c *fiber.Ctx) error {
	input, err := parseCreateBookingRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := services.CreateBooking(currentUserID(c), *input)
	if err != nil {
		return bookingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

// CreateCheckout creates a PENDING booking and immediately opens a hosted
// checkout session for it.
func CreateCheckout(c *fiber.Ctx) error {
	input, err := parseCreateBookingRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := services.CreateBooking(currentUserID(c), *input)
	if err != nil {
		return bookingErrorResponse(c, err)
	}

	session, err := payments.CreateCheckoutSession(booking, &booking.Tour)
	if err != nil {
		log.Printf("🔥 CRITICAL: CreateCheckoutSession failed for booking %s: %v", booking.BookingNumber, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
	}

	if err := services.SetCheckoutSession(booking.ID, session.ID); err != nil {
		log.Printf("🔥 Failed to save checkout session id for booking %s: %v", booking.BookingNumber, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking_id": booking.ID,
		"session_id": session.ID,
		"url":        session.URL,
	})
}

// GetMyBookings lists the authenticated user's bookings, newest first.
func GetMyBookings(c *fiber.Ctx) error {
	var bookings []models.Booking
	err := database.DB.
		Preload("Tour").
		Where("user_id = ?", currentUserID(c)).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{"bookings": bookings, "count": len(bookings)})
}
