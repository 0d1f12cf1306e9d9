package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
	"github.com/nmgtoursjam/tours-backend/services"
)

// BlockDate and UnblockDate let an operator close or reopen a tour date.
// Blocking stops new bookings only; existing commitments stay counted.
func BlockDate(c *fiber.Ctx) error {
	return setDateBlocked(c, true)
}

func UnblockDate(c *fiber.Ctx) error {
	return setDateBlocked(c, false)
}

func setDateBlocked(c *fiber.Ctx, blocked bool) error {
	availabilityID, err := uuid.Parse(c.Params("availabilityId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid availability ID"})
	}

	if blocked {
		err = services.BlockDate(availabilityID)
	} else {
		err = services.UnblockDate(availabilityID)
	}
	if err != nil {
		if services.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update availability"})
	}

	return c.JSON(fiber.Map{"message": "Availability updated", "is_blocked": blocked})
}

// ListBookings gives an operator the full booking list, optionally filtered
// by status or tour date.
func ListBookings(c *fiber.Ctx) error {
	query := database.DB.Preload("Tour").Preload("User")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
		query = query.Where("tour_date = ?", services.Day(parsed))
	}

	var bookings []models.Booking
	if err := query.Order("created_at desc").Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{"bookings": bookings, "count": len(bookings)})
}
